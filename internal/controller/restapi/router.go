package restapi

import (
	"errors"

	"github.com/andreyxaxa/oral-screening/config"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/middleware"
	v1 "github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/oral-screening/internal/usecase"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title                      Oral screening
// @version                    1.0.0
// @description                Patient uploads, admin annotation and PDF screening reports
// @host                       localhost:8080
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	sub usecase.SubmissionUseCase,
	gatherer prometheus.Gatherer,
	l logger.Interface,
) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.Logger(l))

	// K8s liveness
	app.Get("/healthz", func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusOK) })

	// Prometheus metrics
	if cfg.Metrics.Enabled && gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	auth := middleware.Auth([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer)

	apiV1Group := app.Group("/v1")
	{
		v1.NewSubmissionRoutes(apiV1Group, sub, l, auth, cfg.Upload.MaxFileSize)
	}
}

// ErrorHandler renders errors that never reached a handler, such as unknown routes
// or oversized bodies, in the common error body.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return response.Fail(ctx, err)
	}

	kind := errs.KindInternal
	switch {
	case fe.Code == fiber.StatusNotFound:
		kind = errs.KindNotFound
	case fe.Code == fiber.StatusUnauthorized:
		kind = errs.KindUnauthorized
	case fe.Code == fiber.StatusForbidden:
		kind = errs.KindForbidden
	case fe.Code >= fiber.StatusBadRequest && fe.Code < fiber.StatusInternalServerError:
		kind = errs.KindValidation
	}

	return ctx.Status(fe.Code).JSON(response.Error{Error: string(kind), Message: fe.Message})
}
