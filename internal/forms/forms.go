// Package forms validates raw request input for the login, registration and
// employee forms. Each input type has a Validate method that returns either a
// typed value or the per-field error messages, never both.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to its error messages.
type FieldErrors map[string][]string

// Add appends msg to the messages for field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one error.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or "".
func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e FieldErrors) orNil() FieldErrors {
	if len(e) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check runs the struct-tag rules of input and collects the failures.
func check(input any) FieldErrors {
	errs := FieldErrors{}

	err := validate.Struct(input)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("form", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}

// checked interprets an HTML checkbox value.
func checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}
