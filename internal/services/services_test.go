package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/employee-management/internal/database"
	"github.com/yukikurage/employee-management/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestAuthService(t *testing.T, allowAdminSignup bool) (*AuthService, repository.UserRepository) {
	t.Helper()
	userRepo := repository.NewUserRepository(setupTestDB(t))
	return NewAuthService(userRepo, allowAdminSignup), userRepo
}
