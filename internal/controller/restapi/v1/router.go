package v1

import (
	"reflect"
	"strings"

	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/middleware"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/usecase"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func NewSubmissionRoutes(
	apiV1Group fiber.Router,
	sub usecase.SubmissionUseCase,
	l logger.Interface,
	auth fiber.Handler,
	maxFileSize int64,
) {
	r := &V1{sub: sub, logger: l, validate: newValidator(), maxFileSize: maxFileSize}

	patients := apiV1Group.Group("/submissions", auth)
	{
		patients.Post("/", middleware.RequireRole(entity.RolePatient), r.createSubmission)
		patients.Get("/mine", middleware.RequireRole(entity.RolePatient), r.listMySubmissions)
		patients.Get("/:id/report", middleware.RequireRole(entity.RolePatient, entity.RoleAdmin), r.getReport)
	}

	admins := apiV1Group.Group("/admin", auth, middleware.RequireRole(entity.RoleAdmin))
	{
		admins.Get("/submissions", r.listSubmissions)
		admins.Get("/submissions/:id", r.getSubmission)
		admins.Post("/submissions/:id/annotate", r.annotateSubmission)
		admins.Post("/submissions/:id/report", r.generateReport)
	}
}

// newValidator reports fields by their wire names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}
