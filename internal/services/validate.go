package services

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/memotica/memotica/internal/errors"
)

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput checks v against its validate tags and reports the first
// failure as a CONSTRAINT_VIOLATION.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fe, ok := firstFieldError(err)
	if !ok {
		return errors.NewInternalError(err)
	}
	return errors.WrapConstraintError(fe.Field(), describe(fe), err)
}

// validateRequest is validateInput for plain arguments, reported as BAD_REQUEST.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fe, ok := firstFieldError(err)
	if !ok {
		return errors.NewInternalError(err)
	}
	return errors.NewBadRequestError(fmt.Sprintf("%s %s", fe.Field(), describe(fe)))
}

func firstFieldError(err error) (validator.FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return nil, false
	}
	return verrs[0], true
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		if fe.Param() == "1" {
			return "is required"
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// wrapError passes application errors through and hides anything else
// behind an INTERNAL_ERROR.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return errors.NewInternalError(err)
}
