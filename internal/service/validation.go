package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const maxRegionLength = 100

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and folds failures into a ValidationError.
func validateStruct(v *validator.Validate, payload any) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationError{Message: err.Error()}
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return ValidationError{Message: strings.Join(messages, "; ")}
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid":
		return field + " must be a valid uuid"
	case "url":
		return field + " must be a valid url"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "eq":
		return fmt.Sprintf("%s must be %s", field, fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s violates %s=%s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// validateRegion rejects inputs that cannot name a place. Blank input is valid
// and selects the whole country.
func validateRegion(region string) error {
	trimmed := strings.TrimSpace(region)
	if trimmed == "" {
		return nil
	}
	if utf8.RuneCountInString(trimmed) > maxRegionLength {
		return ValidationError{Message: fmt.Sprintf("city must be at most %d characters", maxRegionLength)}
	}
	hasLetter := false
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return ValidationError{Message: "city contains control characters"}
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	if !hasLetter {
		return ValidationError{Message: "city must contain letters"}
	}
	return nil
}

// normalizeTags trims tags and drops blanks and duplicates, keeping first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
