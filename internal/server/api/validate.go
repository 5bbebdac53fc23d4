package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldMessages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"max":      "%s must be at most %s characters long",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
}

// validateRequest runs the struct tags on req and reports the first failing
// field as common.ErrValidation.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	fe := verrs[0]
	msg, ok := fieldMessages[fe.Tag()]
	if !ok {
		return fmt.Errorf("%w: %s is invalid", common.ErrValidation, fe.Field())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Errorf("%w: "+msg, common.ErrValidation, fe.Field(), fe.Param())
	}
	return fmt.Errorf("%w: "+msg, common.ErrValidation, fe.Field())
}
