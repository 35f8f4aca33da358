// Package schema: safe store initialization. Creates only missing tables,
// collections and indexes; never drops or overwrites existing data.
package schema

import (
	"database/sql"
	"log"
)

const tableUsers = "users"

// InitializeUsersDB ensures the identity-store schema exists. The staff_id
// unique index only constrains staff accounts: citizens store NULL, and
// MySQL unique indexes ignore NULL rows.
func InitializeUsersDB(db *sql.DB) {
	exists, err := tableExists(db, tableUsers)
	if err != nil {
		log.Fatalf("[SCHEMA] Failed to check if table %s exists: %v", tableUsers, err)
	}
	if exists {
		log.Println("[SCHEMA] Users schema check passed")
		return
	}

	query := `
		CREATE TABLE users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			phone VARCHAR(32) NOT NULL DEFAULT '',
			role VARCHAR(20) NOT NULL DEFAULT 'citizen',
			staff_id VARCHAR(64) NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			address VARCHAR(255) NOT NULL DEFAULT '',
			city VARCHAR(128) NOT NULL DEFAULT '',
			pincode VARCHAR(16) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMP NULL,
			UNIQUE KEY uq_users_email (email),
			UNIQUE KEY uq_users_staff_id (staff_id),
			KEY idx_users_role (role)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
	`
	if _, err := db.Exec(query); err != nil {
		log.Fatalf("[SCHEMA] Failed to create table %s: %v", tableUsers, err)
	}
	log.Printf("[SCHEMA] Created table: %s", tableUsers)
}

func tableExists(db *sql.DB, table string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`,
		table,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
