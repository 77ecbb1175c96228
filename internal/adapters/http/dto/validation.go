package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation marks a body that decoded but broke a field rule.
	ErrValidation = errors.New("validation failed")

	// ErrBinding marks a body that could not be decoded as JSON.
	ErrBinding = errors.New("binding failed")
)

// Validator returns the shared validator. Fields are reported by their
// JSON name and "notempty" rejects whitespace-only strings.
var Validator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("notempty", notBlank); err != nil {
		panic(err)
	}

	return v
})

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validate checks v against its validate tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// IsValidationError reports whether err carries field-level failures.
func IsValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

// ValidationErrors flattens field failures into messages keyed by JSON
// path, e.g. "cards[1].orientation". It is empty for any other error.
func ValidationErrors(err error) map[string]string {
	details := make(map[string]string)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return details
	}

	for _, fe := range fieldErrs {
		details[jsonPath(fe)] = message(fe)
	}

	return details
}

// jsonPath strips the root type from the namespace.
func jsonPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}

	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "notempty":
		return "must not be empty"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must contain at least " + quantity(fe.Param(), fe.Kind())
	case "max":
		return "must contain at most " + quantity(fe.Param(), fe.Kind())
	default:
		return "failed validation: " + fe.Tag()
	}
}

// quantity renders a min/max bound with the unit of the field kind.
func quantity(n string, kind reflect.Kind) string {
	var unit string
	switch kind {
	case reflect.String:
		unit = "character"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = "item"
	default:
		return n
	}

	if n != "1" {
		unit += "s"
	}

	return n + " " + unit
}
