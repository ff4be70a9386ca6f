package repository

import (
	"github.com/yukikurage/employee-management/internal/database"
	"github.com/yukikurage/employee-management/internal/models"
	"gorm.io/gorm"
)

// GormEmployeeRepository is a GORM implementation of EmployeeRepository
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// Create creates a new employee
func (r *GormEmployeeRepository) Create(employee *models.Employee) error {
	return translateError(r.db.Create(employee).Error)
}

// FindByID finds an employee by ID
func (r *GormEmployeeRepository) FindByID(id uint64) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.First(&employee, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &employee, nil
}

// FindByEmail finds an employee by email
func (r *GormEmployeeRepository) FindByEmail(email string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.Where("email = ?", email).First(&employee).Error; err != nil {
		return nil, translateError(err)
	}
	return &employee, nil
}

// List returns every employee ordered by ID
func (r *GormEmployeeRepository) List() ([]models.Employee, error) {
	var employees []models.Employee
	if err := r.db.Scopes(database.OrderByID).Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// Update overwrites every column of an existing employee, zero values
// included, so cleared optional fields are persisted. A row deleted in the
// meantime yields ErrNotFound instead of being recreated.
func (r *GormEmployeeRepository) Update(employee *models.Employee) error {
	return overwrite(r.db, employee, employee.ID)
}

// Delete hard deletes an employee
func (r *GormEmployeeRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.Employee{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
