package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"civictrack/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, phone, role, staff_id, is_active,
	address, city, pincode, created_at, last_login`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	var (
		staffID   sql.NullString
		address   sql.NullString
		city      sql.NullString
		pincode   sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Phone,
		&user.Role,
		&staffID,
		&user.IsActive,
		&address,
		&city,
		&pincode,
		&user.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, err
	}
	user.StaffID = staffID.String
	user.Profile = models.Profile{Address: address.String, City: city.String, Pincode: pincode.String}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return user, nil
}

// GetByID retrieves a user by ID. Returns (nil, nil) when no such user exists.
func (r *UserRepository) GetByID(userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when no such user
// exists.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetByStaffID retrieves a staff user by staff id. Returns (nil, nil) when no
// such user exists.
func (r *UserRepository) GetByStaffID(staffID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE staff_id = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRow(query, staffID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by staff ID: %w", err)
	}
	return user, nil
}

// Create inserts a new user and returns its generated id. StaffID is stored
// as NULL for non-staff so the unique index only applies to staff accounts.
func (r *UserRepository) Create(user *models.User) (int64, error) {
	query := `
		INSERT INTO users (email, password_hash, name, phone, role, staff_id, is_active,
			address, city, pincode, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`

	var staffID interface{}
	if user.StaffID != "" {
		staffID = user.StaffID
	}
	result, err := r.db.Exec(query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Role,
		staffID,
		user.IsActive,
		user.Profile.Address,
		user.Profile.City,
		user.Profile.Pincode,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return userID, nil
}

// UpdateLastLogin stamps the user's last successful login.
func (r *UserRepository) UpdateLastLogin(userID int64) error {
	query := `UPDATE users SET last_login = NOW() WHERE id = ?`

	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpdateProfile updates the user's own editable fields.
func (r *UserRepository) UpdateProfile(userID int64, name, phone string, profile models.Profile) error {
	query := `
		UPDATE users
		SET name = ?, phone = ?, address = ?, city = ?, pincode = ?
		WHERE id = ?
	`

	if _, err := r.db.Exec(query, name, phone, profile.Address, profile.City, profile.Pincode, userID); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// List returns users filtered by role and an optional name/email search,
// newest first, with offset pagination.
func (r *UserRepository) List(role models.Role, search string, offset, limit int) ([]models.User, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if role != "" {
		where = append(where, "role = ?")
		args = append(args, role)
	}
	if search != "" {
		where = append(where, "(name LIKE ? OR email LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM users WHERE ` + cond
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, total, nil
}

// CountByRole counts users holding a role. Used by startup admin seeding
// and the admin dashboard.
func (r *UserRepository) CountByRole(role models.Role) (int64, error) {
	var n int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return n, nil
}

// SetActive enables or disables an account.
func (r *UserRepository) SetActive(userID int64, active bool) error {
	if _, err := r.db.Exec(`UPDATE users SET is_active = ? WHERE id = ?`, active, userID); err != nil {
		return fmt.Errorf("failed to update user active flag: %w", err)
	}
	return nil
}
