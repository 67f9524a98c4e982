package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/memotica/memotica/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateBody checks a decoded request body and reports the first failing
// field as BAD_REQUEST.
func validateBody(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.NewInternalError(err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return errors.NewBadRequestError(fe.Field() + " is required")
	case "oneof":
		return errors.NewBadRequestError(fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
	default:
		return errors.NewBadRequestError(fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
}
