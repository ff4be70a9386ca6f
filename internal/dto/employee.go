package dto

import (
	"net/url"
	"strconv"

	"github.com/yukikurage/employee-management/internal/constants"
	"github.com/yukikurage/employee-management/internal/models"
)

// UserDTO represents the signed-in user in views
type UserDTO struct {
	ID      uint64
	Name    string
	Email   string
	IsAdmin bool
}

// EmployeeDTO represents an employee in list and detail views. Optional
// values are pre-formatted; empty strings mean "not set".
type EmployeeDTO struct {
	ID         uint64
	FirstName  string
	LastName   string
	FullName   string
	Email      string
	Phone      string
	Department string
	Position   string
	Salary     string
	DateJoined string
	ProfilePic string
	PictureURL string
}

// ToUserDTO converts a user to its view model
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}

// ToEmployeeDTO converts an employee to its view model
func ToEmployeeDTO(e models.Employee) EmployeeDTO {
	out := EmployeeDTO{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		FullName:   e.FullName(),
		Email:      e.Email,
		Phone:      e.Phone,
		Department: e.Department,
		Position:   e.Position,
		ProfilePic: e.ProfilePic,
	}
	if e.Salary != nil {
		out.Salary = strconv.FormatFloat(*e.Salary, 'f', 2, 64)
	}
	if e.DateJoined != nil {
		out.DateJoined = e.DateJoined.Format(constants.DateLayout)
	}
	if e.ProfilePic != "" {
		out.PictureURL = "/uploads/" + url.PathEscape(e.ProfilePic)
	}
	return out
}

// ToEmployeeDTOs converts a list of employees
func ToEmployeeDTOs(employees []models.Employee) []EmployeeDTO {
	out := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		out[i] = ToEmployeeDTO(e)
	}
	return out
}
