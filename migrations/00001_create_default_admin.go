package migrations

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	goose.AddMigration(upCreateDefaultAdmin, downCreateDefaultAdmin)
}

func upCreateDefaultAdmin(tx *sql.Tx) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@smartspace.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	// Same bcrypt cost as the app uses.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 14)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var count int
	err = tx.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	if err != nil {
		return fmt.Errorf("check existing admin: %w", err)
	}

	if count == 0 {
		query := `
			INSERT INTO users (email, password, first_name, last_name, role, is_verified, is_active, created_at, updated_at)
			VALUES ($1, $2, 'Administrator', '', 'admin', true, true, NOW(), NOW())
		`
		if _, err := tx.Exec(query, adminEmail, string(hashedPassword)); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
	}

	return nil
}

func downCreateDefaultAdmin(tx *sql.Tx) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@smartspace.local"
	}

	_, err := tx.Exec("DELETE FROM users WHERE email = $1 AND role = 'admin'", adminEmail)
	if err != nil {
		return fmt.Errorf("delete admin user: %w", err)
	}
	return nil
}
