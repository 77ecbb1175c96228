package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf key so messages match the YAML.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return v
}

// Problem is one rejected setting, addressed by its dotted koanf key.
type Problem struct {
	Key     string
	Message string
}

func (p Problem) String() string {
	return p.Key + " " + p.Message
}

// ValidationError lists every rejected setting. The service refuses to
// start while any remain.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}

	return "config validation failed:\n  " + strings.Join(lines, "\n  ")
}

// Validate checks c against the struct tags and returns a *ValidationError
// naming each offending key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]Problem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, Problem{Key: keyFor(fe.Namespace()), Message: describe(fe)})
	}

	return &ValidationError{Problems: problems}
}

var tagMessages = map[string]string{
	"required":    "is required",
	"required_if": "is required when %",
	"min":         "must be at least %",
	"max":         "must be at most %",
	"oneof":       "must be one of: %",
	"url":         "must be a valid URL",
	"dive":        "contains an invalid entry",
}

func describe(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "failed validation: " + fe.Tag()
	}

	return strings.Replace(msg, "%", fe.Param(), 1)
}

// keyFor turns a validator namespace such as "Config.client.circuit_breaker.timeout"
// into the koanf key "client.circuit_breaker.timeout".
func keyFor(namespace string) string {
	_, key, ok := strings.Cut(namespace, ".")
	if !ok {
		key = namespace
	}

	return strings.ToLower(key)
}
