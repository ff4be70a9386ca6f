package forms

import "strings"

// LoginInput is the raw login form.
type LoginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Remember string `form:"remember"`
}

// Login is a validated login form.
type Login struct {
	Email    string
	Password string
	Remember bool
}

// Validate checks the login form.
func (in LoginInput) Validate() (Login, FieldErrors) {
	in.Email = strings.TrimSpace(in.Email)

	if errs := check(in).orNil(); errs != nil {
		return Login{}, errs
	}
	return Login{
		Email:    in.Email,
		Password: in.Password,
		Remember: checked(in.Remember),
	}, nil
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Name     string `form:"name" validate:"required,max=80"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Password string `form:"password" validate:"required,min=6"`
	IsAdmin  string `form:"is_admin"`
}

// Registration is a validated registration form.
type Registration struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// Validate checks the registration form.
func (in RegisterInput) Validate() (Registration, FieldErrors) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if errs := check(in).orNil(); errs != nil {
		return Registration{}, errs
	}
	return Registration{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		IsAdmin:  checked(in.IsAdmin),
	}, nil
}
