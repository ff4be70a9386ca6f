package repository

import (
	"errors"
	"strings"

	"github.com/yukikurage/employee-management/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row matches the requested identity.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEmail is returned when a write violates an email uniqueness constraint.
	ErrDuplicateEmail = errors.New("repository: email already exists")
)

// UserRepository defines the interface for user account data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update saves every column of an existing user
	Update(user *models.User) error

	// Count returns the number of user accounts
	Count() (int64, error)
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	// Create creates a new employee
	Create(employee *models.Employee) error

	// FindByID finds an employee by ID
	FindByID(id uint64) (*models.Employee, error)

	// FindByEmail finds an employee by email
	FindByEmail(email string) (*models.Employee, error)

	// List returns every employee ordered by ID
	List() ([]models.Employee, error)

	// Update overwrites every column of an existing employee
	Update(employee *models.Employee) error

	// Delete hard deletes an employee
	Delete(id uint64) error
}

// translateError maps driver and gorm errors onto repository errors.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrDuplicateEmail
	default:
		return err
	}
}

// overwrite updates every column of model except its key and creation time.
// Zero affected rows means the row is gone, unless it still exists with
// identical values (MySQL reports matched-but-unchanged rows as 0).
func overwrite(db *gorm.DB, model any, id uint64) error {
	result := db.Model(model).Select("*").Omit("id", "created_at").Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation catches drivers that do not implement gorm's error translator.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "duplicate entry")
}
