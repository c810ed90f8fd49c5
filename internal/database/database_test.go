package database

import (
	"testing"

	"warbler/internal/config"
	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectTestMigratesSchema(t *testing.T) {
	db, err := ConnectTest()
	require.NoError(t, err)

	for _, table := range []string{"users", "messages", "follows", "likes"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}

func TestConnectTestIsolation(t *testing.T) {
	db1, err := ConnectTest()
	require.NoError(t, err)
	db2, err := ConnectTest()
	require.NoError(t, err)

	require.NoError(t, db1.Create(&models.User{
		Username: "testuser",
		Email:    "test@test.com",
		Password: "HASHED_PASSWORD",
	}).Error)

	var count int64
	require.NoError(t, db2.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count, "databases from separate ConnectTest calls must not share state")
}

func TestUniqueConstraints(t *testing.T) {
	db, err := ConnectTest()
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.User{
		Username: "testuser",
		Email:    "test@test.com",
		Password: "HASHED_PASSWORD",
	}).Error)

	dupUsername := db.Create(&models.User{
		Username: "testuser",
		Email:    "other@test.com",
		Password: "HASHED_PASSWORD",
	})
	assert.Error(t, dupUsername.Error)

	dupEmail := db.Create(&models.User{
		Username: "otheruser",
		Email:    "test@test.com",
		Password: "HASHED_PASSWORD",
	})
	assert.Error(t, dupEmail.Error)
}

func TestConfigurePool(t *testing.T) {
	db, err := ConnectTest()
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:   10,
		DBMaxIdleConns:   5,
		DBConnMaxLifeMin: 15,
	}

	assert.NoError(t, configurePool(db, cfg))
}
