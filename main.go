package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"civictrack/config"
	"civictrack/notification"
	"civictrack/repository"
	"civictrack/routes"
	"civictrack/schema"
	"civictrack/service"
	"civictrack/storage"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := config.LoadConfig()

	// Identity store (UTC for consistent timestamps)
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.Users.User,
		cfg.Users.Password,
		cfg.Users.Host,
		cfg.Users.Port,
		cfg.Users.DBName,
	)
	usersDB, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("Failed to open users database connection: %v", err)
	}
	defer usersDB.Close()
	if err := usersDB.Ping(); err != nil {
		log.Fatalf("Failed to ping users database: %v", err)
	}
	log.Println("Users database connection established")
	schema.InitializeUsersDB(usersDB)

	// Complaints store
	mongoCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to complaints store: %v", err)
	}
	if err := client.Ping(mongoCtx, nil); err != nil {
		log.Fatalf("Failed to ping complaints store: %v", err)
	}
	defer client.Disconnect(context.Background())
	log.Println("Complaints store connection established")

	complaintsDB := client.Database(cfg.Mongo.Database)
	schema.InitializeComplaintsDB(context.Background(), complaintsDB)

	// Upload storage
	uploads, err := storage.NewDiskStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Repositories
	router := repository.NewPartitionRouter(complaintsDB)
	complaintRepo := repository.NewComplaintRepository(router)
	activityRepo := repository.NewActivityRepository(complaintsDB)
	userRepo := repository.NewUserRepository(usersDB)

	// Notifications
	notifier := notification.NewEmailNotifier(cfg.Email)

	// Services
	userService := service.NewUserService(userRepo, complaintRepo, activityRepo, cfg.Auth)
	complaintService := service.NewComplaintService(complaintRepo, activityRepo, userRepo, notifier)

	// Seed the default admin so a fresh deployment is reachable
	adminEmail := getSeedEnv("DEFAULT_ADMIN_EMAIL", "admin@municipal.gov")
	adminPassword := getSeedEnv("DEFAULT_ADMIN_PASSWORD", "ChangeMe!Admin1")
	if err := userService.EnsureAdmin(adminEmail, adminPassword, "System Administrator"); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	muxRouter := routes.SetupRoutes(cfg, complaintService, userService, uploads)

	// Add CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	handler := corsHandler(muxRouter)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}

func getSeedEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
