// Package validator checks decoded request bodies against `validate` struct
// tags and reports failures keyed by JSON field path.
package validator

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidate()
	// sets holds the allowed values of every tag added with RegisterSet.
	sets = map[string][]string{}
)

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterSet adds a tag that accepts only the given string values, so a
// field can be written as `validate:"omitempty,category"`. Tags must be
// registered before the first call to Validate.
func RegisterSet(tag string, values ...string) error {
	allowed := slices.Clone(values)
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		f := fl.Field()
		return f.Kind() == reflect.String && slices.Contains(allowed, f.String())
	})
	if err != nil {
		return fmt.Errorf("register %q: %w", tag, err)
	}
	sets[tag] = allowed
	return nil
}

// MustRegisterSet is RegisterSet for package initialization.
func MustRegisterSet(tag string, values ...string) {
	if err := RegisterSet(tag, values...); err != nil {
		panic(err)
	}
}

// Validate checks s against its `validate` tags.
func Validate(s any) error {
	err := validate.Struct(s)
	if errs, ok := err.(validator.ValidationErrors); ok {
		return &ValidationError{Errors: errs}
	}
	return err
}

// ValidationError carries every failed field of one struct.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", fieldPath(fe), message(fe)))
	}
	return strings.Join(msgs, "; ")
}

// Fields maps each failed field path, such as "products[1].quantity", to a
// readable message.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fieldPath(fe)] = message(fe)
	}
	return fields
}

// fieldPath drops the root struct name from the error namespace.
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	if allowed, ok := sets[fe.Tag()]; ok {
		return "must be one of: " + strings.Join(allowed, ", ")
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("must contain %s %s items", bound, fe.Param())
		case reflect.String:
			return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
		default:
			return fmt.Sprintf("must be %s %s", bound, fe.Param())
		}
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
