package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/testdb"
	"residency-api/internal/pkg/logger"
	"residency-api/internal/pkg/password"
)

func TestSeederIsRepeatable(t *testing.T) {
	password.Cost = bcrypt.MinCost
	db := testdb.New(t)
	cfg := &Config{
		AppMode: "dev",
		Seed:    SeedConfig{AdminEmail: "admin@residency.local", AdminPassword: "admin123456", AdminName: "Society Admin"},
	}
	seeder := NewSeeder(db, cfg, logger.Nop())

	require.NoError(t, seeder.Run())
	require.NoError(t, seeder.Run())

	var buildings []models.Building
	require.NoError(t, db.Order("id").Find(&buildings).Error)
	require.Len(t, buildings, 24)
	assert.Equal(t, "A-1", buildings[0].Name)
	assert.Equal(t, "1BHK", buildings[5].Type)
	assert.Equal(t, "2BHK", buildings[6].Type)
	assert.Equal(t, "A-24", buildings[23].Name)

	var admin models.User
	require.NoError(t, db.Where("role = ?", "ADMIN").First(&admin).Error)
	assert.Equal(t, "APPROVED", admin.Status)
	assert.True(t, password.Verify("admin123456", admin.Password))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 2, users)
}
