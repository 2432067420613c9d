// Package validation holds the error types shared by every config layer and
// the name compatibility check used at the indicator and loader join points.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var val = validator.New(validator.WithRequiredStructEnabled())

// ValidationError reports a bad field, alias or range found while building a config.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s '%v': %s", e.Field, e.Value, e.Reason)
}

// NameMismatchError reports two incompatible names, e.g. a SMA config handed to EMA.
type NameMismatchError struct {
	Left  string
	Right string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("%s != %s: names should share the same prefix", e.Left, e.Right)
}

// Invalid builds a ValidationError.
func Invalid(field string, value any, format string, args ...any) error {
	return &ValidationError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// Struct runs the struct tag validation and turns the first failing field into a ValidationError.
func Struct(v any) error {
	err := val.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate %T: %w", v, err)
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Value: fe.Value(), Reason: describeTag(fe)}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "min":
		return "needs at least " + fe.Param() + " entries"
	case "required_if":
		return "is required when " + fe.Param()
	case "oneof":
		return "must be one of [" + strings.ReplaceAll(fe.Param(), " ", ", ") + "]"
	default:
		return "must satisfy " + fe.Tag()
	}
}

// Compatible succeeds when every name in want is present in have.
// Otherwise it fails with the first non-matching pair.
func Compatible(want, have []string) error {
	for _, w := range want {
		found := false
		for _, h := range have {
			if w == h {
				found = true
				break
			}
		}
		if found {
			continue
		}
		right := ""
		if len(have) > 0 {
			right = have[0]
		}
		return &NameMismatchError{Left: w, Right: right}
	}
	return nil
}
