package config

import (
	"fmt"
	"os"

	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnvDefault("DB_HOST", "localhost"),
			getEnvDefault("DB_USER", "platefeed"),
			os.Getenv("DB_PASSWORD"),
			getEnvDefault("DB_NAME", "platefeed"),
			getEnvDefault("DB_PORT", "5432"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if err := AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "err", err)
		os.Exit(1)
	}

	return db
}

// AutoMigrate runs migrations for every model. Shared with the test harness.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PrivacySettings{},
		&models.Relationship{},
		&models.RefreshToken{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
		&models.SavedRecipe{},
		&models.Report{},
		&models.Notification{},
	)
}
