package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/employee-management/internal/database"
	"github.com/yukikurage/employee-management/internal/forms"
	"github.com/yukikurage/employee-management/internal/logger"
	"github.com/yukikurage/employee-management/internal/repository"
	"github.com/yukikurage/employee-management/internal/services"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator, or promote an existing user",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name for a new account")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "account email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password for a new account")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	reg, errs := forms.RegisterInput{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
		IsAdmin:  "y",
	}.Validate()
	if errs != nil {
		return fmt.Errorf("invalid admin account: %w", errs)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	authService := services.NewAuthService(repository.NewUserRepository(db), false)
	user, created, err := authService.CreateAdmin(reg)
	if err != nil {
		return err
	}

	if created {
		logger.L().Info("administrator created", "user_id", user.ID, "email", user.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s\n", user.Email)
	} else {
		logger.L().Info("user promoted to administrator", "user_id", user.ID, "email", user.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "promoted %s to administrator\n", user.Email)
	}
	return nil
}
