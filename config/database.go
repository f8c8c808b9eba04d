package config

import (
	"fmt"
	"log"

	"github.com/alum-connect/api-go/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	return db
}

// Migrate creates the schema, including the partial unique index that
// enforces at most one outstanding (pending or accepted) follow edge per
// (follower, target) pair. Rejected edges stay behind and do not block a
// fresh request.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.FollowRequest{}, &models.Notification{}); err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_follow_requests_outstanding
		 ON follow_requests (follower_id, target_id)
		 WHERE status IN ('pending', 'accepted')`,
	).Error
}
