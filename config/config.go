package config

import (
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Users    UsersDBConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Email    EmailConfig
	Paging   PagingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// MongoConfig holds the complaints-store configuration. Every complaint
// category is a separate collection inside Database.
type MongoConfig struct {
	URI      string
	Database string
}

// UsersDBConfig holds the identity-store (MySQL) configuration.
type UsersDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// AuthConfig holds token issuance configuration.
type AuthConfig struct {
	JWTSecret      string
	TokenTTLHours  int
}

// UploadConfig holds blob-store configuration.
type UploadConfig struct {
	Dir string
}

// EmailConfig holds outbound notification configuration. When Enabled is
// false the notifier logs instead of sending.
type EmailConfig struct {
	Enabled      bool
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

// PagingConfig holds list page sizes.
type PagingConfig struct {
	ItemsPerPage      int
	AdminItemsPerPage int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("PORT", getEnv("SERVER_PORT", "8080")),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017/"),
			Database: getEnv("COMPLAINTS_DATABASE_NAME", "municipal_complaints"),
		},
		Users: UsersDBConfig{
			Host:     getEnv("USERS_DB_HOST", "localhost"),
			Port:     getEnv("USERS_DB_PORT", "3306"),
			User:     os.Getenv("USERS_DB_USER"),
			Password: os.Getenv("USERS_DB_PASSWORD"),
			DBName:   getEnv("USERS_DB_NAME", "municipal_users"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "change-this-secret-key-in-production"),
			TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 24),
		},
		Upload: UploadConfig{
			Dir: getEnv("UPLOAD_DIR", "static/uploads"),
		},
		Email: EmailConfig{
			Enabled:      getEnvBool("ENABLE_EMAIL_NOTIFICATIONS", false),
			SMTPServer:   getEnv("SMTP_SERVER", "smtp.gmail.com"),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUser:     os.Getenv("SMTP_USER"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		},
		Paging: PagingConfig{
			ItemsPerPage:      getEnvInt("ITEMS_PER_PAGE", 10),
			AdminItemsPerPage: getEnvInt("ADMIN_ITEMS_PER_PAGE", 20),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
