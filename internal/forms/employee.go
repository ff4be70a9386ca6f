package forms

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/employee-management/internal/constants"
	"github.com/yukikurage/employee-management/internal/models"
)

// EmployeeInput is the raw employee create/edit form. Salary and DateJoined
// stay strings so that malformed values become field errors instead of
// binding failures.
type EmployeeInput struct {
	FirstName  string `form:"first_name" validate:"required,max=50"`
	LastName   string `form:"last_name" validate:"max=50"`
	Email      string `form:"email" validate:"required,email,max=120"`
	Phone      string `form:"phone" validate:"max=20"`
	Department string `form:"department" validate:"max=50"`
	Position   string `form:"position" validate:"max=50"`
	Salary     string `form:"salary"`
	DateJoined string `form:"date_joined"`
}

// EmployeeFields is a validated employee form.
type EmployeeFields struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Department string
	Position   string
	Salary     *float64
	DateJoined *time.Time
}

// Validate checks the employee form.
func (in EmployeeInput) Validate() (EmployeeFields, FieldErrors) {
	in = in.trimmed()
	errs := check(in)

	var salary *float64
	if in.Salary != "" {
		v, err := strconv.ParseFloat(in.Salary, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			errs.Add("salary", "Not a valid float value.")
		} else {
			salary = &v
		}
	}

	var joined *time.Time
	if in.DateJoined != "" {
		d, err := time.Parse(constants.DateLayout, in.DateJoined)
		if err != nil {
			errs.Add("date_joined", "Not a valid date value.")
		} else {
			joined = &d
		}
	}

	if errs := errs.orNil(); errs != nil {
		return EmployeeFields{}, errs
	}
	return EmployeeFields{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		Department: in.Department,
		Position:   in.Position,
		Salary:     salary,
		DateJoined: joined,
	}, nil
}

func (in EmployeeInput) trimmed() EmployeeInput {
	return EmployeeInput{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Department: strings.TrimSpace(in.Department),
		Position:   strings.TrimSpace(in.Position),
		Salary:     strings.TrimSpace(in.Salary),
		DateJoined: strings.TrimSpace(in.DateJoined),
	}
}

// Apply overwrites every form-backed field of e. ProfilePic is not form-backed.
func (f EmployeeFields) Apply(e *models.Employee) {
	e.FirstName = f.FirstName
	e.LastName = f.LastName
	e.Email = f.Email
	e.Phone = f.Phone
	e.Department = f.Department
	e.Position = f.Position
	e.Salary = f.Salary
	e.DateJoined = f.DateJoined
}

// EmployeeInputFrom pre-fills the edit form from a stored employee.
func EmployeeInputFrom(e *models.Employee) EmployeeInput {
	in := EmployeeInput{
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		Department: e.Department,
		Position:   e.Position,
	}
	if e.Salary != nil {
		in.Salary = strconv.FormatFloat(*e.Salary, 'f', -1, 64)
	}
	if e.DateJoined != nil {
		in.DateJoined = e.DateJoined.Format(constants.DateLayout)
	}
	return in
}
