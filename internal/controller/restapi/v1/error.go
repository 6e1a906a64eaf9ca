package v1

import (
	"errors"
	"fmt"

	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errorResponse writes err in the common error body. Failures the caller cannot fix are logged.
func (r *V1) errorResponse(ctx *fiber.Ctx, err error, where string) error {
	if response.StatusOf(errs.KindOf(err)) >= fiber.StatusInternalServerError {
		r.logger.Error(err, where)
	}

	return response.Fail(ctx, err)
}

// check runs struct validation and turns the first failing field into a validation error.
func (r *V1) check(v any) error {
	err := r.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errs.Validation("%s", fieldMessage(fe))
	}

	return errs.Validation("invalid request")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
