package database

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/employee-management/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the users and employees tables.
func Migrate(db *gorm.DB) error {
	slog.Info("Running database migrations...")
	if err := db.AutoMigrate(&models.User{}, &models.Employee{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db); err != nil {
		return err
	}
	slog.Info("Database migrations completed")
	return nil
}

// AddIndexes adds the secondary indexes used by the employee listing
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		name    string
		columns []string
	}{
		{"idx_employees_department", []string{"department"}},
		{"idx_employees_last_name", []string{"last_name"}},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(&models.Employee{}, idx.name) {
			slog.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(&models.Employee{}); err != nil {
			return fmt.Errorf("failed to parse employee schema: %w", err)
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			stmt.Quote(idx.name), stmt.Quote(stmt.Table), joinQuoted(stmt, idx.columns))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		slog.Info("Created index", "index", idx.name, "columns", idx.columns)
	}

	return nil
}

func joinQuoted(stmt *gorm.Statement, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = stmt.Quote(c)
	}
	return strings.Join(quoted, ", ")
}
