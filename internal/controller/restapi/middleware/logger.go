package middleware

import (
	"time"

	"github.com/andreyxaxa/oral-screening/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// Logger writes one line per request. Server errors log at error level.
func Logger(l logger.Interface) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()

		err := ctx.Next()
		if err != nil {
			// let the app error handler set the final status before we read it
			if herr := ctx.App().ErrorHandler(ctx, err); herr != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := ctx.Response().StatusCode()
		requestID, _ := ctx.Locals("requestid").(string)

		msg := "restapi - %s %s - %d - %s - request_id=%s"
		args := []interface{}{ctx.Method(), ctx.Path(), status, time.Since(start), requestID}

		if status >= fiber.StatusInternalServerError {
			l.Error(msg, args...)
		} else {
			l.Info(msg, args...)
		}

		return nil
	}
}
