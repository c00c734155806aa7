package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/kbukum/whisperd/errors"
)

// FieldError is one failed rule, keyed by the field's json or config name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var engine = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
})

// Validate checks the `validate` struct tags of s. Failures come back as an
// INVALID_INPUT AppError whose message lists every field and whose
// Details["fields"] holds the []FieldError.
func Validate(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("validation failed: " + err.Error())
	}

	fields := make([]FieldError, len(verrs))
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		// Drop the top-level type name from "output.result.language".
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		fields[i] = FieldError{Field: path, Message: describe(fe)}
		parts[i] = path + ": " + fields[i].Message
	}
	appErr := apperrors.Validation(strings.Join(parts, "; "))
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}

// fieldName prefers the json tag, then the mapstructure tag, then the Go
// name in snake_case. Empty and "-" tags are skipped.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "mapstructure"} {
		if name, _, _ := strings.Cut(f.Tag.Get(key), ","); name != "" && name != "-" {
			return name
		}
	}
	return snake(f.Name)
}

func describe(fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "max":
		bound := map[string]string{"min": "at least ", "max": "at most "}[fe.Tag()]
		switch fe.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			return "must have " + bound + p + " items"
		case reflect.String:
			return "must be " + bound + p + " characters"
		}
		return "must be " + bound + p
	case "gt":
		return "must be greater than " + p
	case "gte":
		return "must be at least " + p
	case "lt":
		return "must be less than " + p
	case "lte":
		return "must be at most " + p
	case "oneof":
		return "must be one of: " + p
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	}
	return "is invalid"
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
