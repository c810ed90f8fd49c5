package repository

import (
	"context"
	"testing"

	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB returns a fresh in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectTest()
	require.NoError(t, err)
	return db
}

// createUser persists a user with sane defaults for tests.
func createUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    email,
		Password: "HASHED_PASSWORD",
		ImageURL: models.DefaultImageURL,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// createMessage persists a warble for tests.
func createMessage(t *testing.T, db *gorm.DB, userID uint, text string) *models.Message {
	t.Helper()
	m := &models.Message{Text: text, UserID: userID}
	require.NoError(t, db.Create(m).Error)
	return m
}

func ctxb() context.Context {
	return context.Background()
}
