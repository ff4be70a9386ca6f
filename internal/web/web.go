// Package web holds the server-rendered HTML templates.
package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/yukikurage/employee-management/internal/forms"
)

//go:embed templates
var templatesFS embed.FS

var funcs = template.FuncMap{
	"fieldErrors": func(errs forms.FieldErrors, field string) []string {
		return errs[field]
	},
	"dict": dict,
}

// dict builds a map from alternating keys and values so partials can take
// more than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// Templates parses every page and partial. Pages are addressed by their
// define name, e.g. "login.html" or "employees/list.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS,
		"templates/*.html",
		"templates/employees/*.html",
	)
}
