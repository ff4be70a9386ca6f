package main

import (
	"github.com/spf13/cobra"
	"github.com/yukikurage/employee-management/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		return database.Migrate(db)
	},
}
