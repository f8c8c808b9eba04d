package services

import (
	"testing"

	"github.com/alum-connect/api-go/config"
	"github.com/alum-connect/api-go/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every statement on the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func createAccount(t *testing.T, db *gorm.DB, email, role, status, college string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Password: "hashed",
		Role:     role,
		Status:   status,
		College:  college,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// drainEvents empties the bus and returns everything published so far.
func drainEvents(bus *EventBus) []Event {
	var events []Event
	for {
		select {
		case e := <-bus.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}
