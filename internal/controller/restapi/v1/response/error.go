package response

import (
	"net/http"

	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

type Error struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message" example:"at least one image is required"`
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInvalidState:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Fail writes err as {"error": kind, "message": msg} with the matching status.
func Fail(ctx *fiber.Ctx, err error) error {
	kind := errs.KindOf(err)

	return ctx.Status(StatusOf(kind)).JSON(Error{
		Error:   string(kind),
		Message: errs.MessageOf(err),
	})
}
