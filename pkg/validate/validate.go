// Package validate wraps go-playground/validator with the rules shared by the
// API and the dashboard forms.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// emailPattern matches something@something.tld without whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// colorPattern accepts #RGB and #RRGGBB.
var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
			return Email(fl.Field().String())
		})
		_ = v.RegisterValidation("hexcolor_short", func(fl validator.FieldLevel) bool {
			return colorPattern.MatchString(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Email reports whether value looks like an email address.
func Email(value string) bool {
	return emailPattern.MatchString(value)
}

// FieldErrors maps a field name to a human readable message.
type FieldErrors map[string]string

// Error implements error.
func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates v and returns FieldErrors (nil when valid).
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "contact_email", "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "hexcolor_short":
		return "must be a hex color such as #3B82F6"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
