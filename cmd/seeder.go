package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM website_management").Error; err != nil {
				log.Fatalf("failed to clear management records: %v", err)
			}
			if err := db.Exec("DELETE FROM websites").Error; err != nil {
				log.Fatalf("failed to clear websites: %v", err)
			}
			if err := db.Exec("DELETE FROM users").Error; err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		adminEmail := "admin@websitecrm.com"
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists:", adminEmail)
		} else {
			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, status, ranking, phone, created_at, updated_at) VALUES (?, ?, ?, 'admin', 'active', 'master', '+60123456789', now(), now())",
				adminEmail, "Site Admin", string(hash),
			).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		}

		demoEmail := "demo@websitecrm.com"
		row = db.Raw("SELECT 1 FROM users WHERE email = ?", demoEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("demo user already exists:", demoEmail)
		} else {
			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, status, ranking, phone, created_at, updated_at) VALUES (?, ?, ?, 'user', 'active', 'customer', '+60198765432', now(), now())",
				demoEmail, "Demo User", string(hash),
			).Error; err != nil {
				log.Fatalf("failed to insert demo user: %v", err)
			}
			fmt.Println("Seeded demo user:", demoEmail)
		}

		fmt.Println("Seeding finished; default password is:", password)
	},
}
