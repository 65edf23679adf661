package database

import (
	"runform-backend/internal/config"
	"runform-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB holds the database connection.
var DB *gorm.DB

// InitDB initializes the database connection and migrates the schema.
func InitDB(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		return err
	}
	return DB.AutoMigrate(&models.Session{}, &models.Media{})
}
