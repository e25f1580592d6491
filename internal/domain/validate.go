package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks v against its validate tags. Failures are wrapped in
// ErrValidation with a message naming the first offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fmt.Errorf("%w: %s", ErrValidation, describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	default:
		return field + " is invalid"
	}
}

// Normalize applies registration defaults: auth_type defaults to none and a
// missing tag list becomes empty.
func (s AgentSpec) Normalize() AgentSpec {
	if s.AuthType == "" {
		s.AuthType = AuthTypeNone
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s
}

// Validate checks field constraints and that capability names are unique.
func (s AgentSpec) Validate() error {
	if err := Validate(s); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(s.Capabilities))
	for _, c := range s.Capabilities {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate capability name %q", ErrValidation, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
