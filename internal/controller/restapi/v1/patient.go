package v1

import (
	"net/http"

	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/middleware"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/request"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/oral-screening/internal/dto"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/repo"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// @Summary     Upload screening images
// @Description Stores 1 to 3 intraoral photos (upper, front, lower) and creates a submission in the uploaded state
// @Tags        submissions
// @Accept      mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       images      formData file   true  "JPEG or PNG, up to 3 files, 10 MiB each"
// @Param       patientName formData string true  "Patient name"
// @Param       patientId   formData string true  "Patient id"
// @Param       email       formData string true  "Contact email"
// @Param       note        formData string false "Patient note"
// @Success     201 {object} response.Envelope{submission=response.PatientSubmission}
// @Failure     400 {object} response.Error
// @Failure     401 {object} response.Error
// @Failure     500 {object} response.Error
// @Router      /v1/submissions [post]
func (r *V1) createSubmission(ctx *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(ctx)

	form, err := ctx.MultipartForm()
	if err != nil {
		return r.errorResponse(ctx, errs.Validation("multipart form with images is required"), "restapi - v1 - createSubmission")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return r.errorResponse(ctx, errs.Validation("at least one image is required"), "restapi - v1 - createSubmission")
	}
	if len(files) > entity.MaxImages {
		return r.errorResponse(ctx, errs.Validation("at most %d images are allowed", entity.MaxImages), "restapi - v1 - createSubmission")
	}

	var req request.CreateSubmission
	if err = ctx.BodyParser(&req); err != nil {
		return r.errorResponse(ctx, errs.Validation("invalid form body"), "restapi - v1 - createSubmission")
	}
	if err = r.check(req); err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - createSubmission")
	}

	images := make([]dto.UploadedImage, 0, len(files))
	for _, fh := range files {
		ext, err := validate.Image(fh, r.maxFileSize)
		if err != nil {
			return r.errorResponse(ctx, err, "restapi - v1 - createSubmission")
		}

		f, err := fh.Open()
		if err != nil {
			return r.errorResponse(ctx, err, "restapi - v1 - createSubmission - fh.Open")
		}
		defer f.Close()

		images = append(images, dto.UploadedImage{
			Data:        f,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Ext:         ext,
			Size:        fh.Size,
		})
	}

	s, err := r.sub.Create(ctx.UserContext(), dto.CreateSubmission{
		PatientID:         principal.ID,
		PatientName:       req.PatientName,
		ExternalPatientID: req.PatientID,
		Email:             req.Email,
		Note:              req.Note,
		Images:            images,
	})
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - createSubmission")
	}

	return ctx.Status(http.StatusCreated).JSON(response.Envelope{
		Message:    "Submission uploaded successfully",
		Submission: response.NewPatientSubmission(s),
	})
}

// @Summary     List own submissions
// @Description Newest first. Annotation data and admin notes are not included
// @Tags        submissions
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page, starting at 1"
// @Param       limit query int false "Page size, up to 100"
// @Success     200 {object} response.SubmissionList{submissions=[]response.PatientSubmission}
// @Failure     400 {object} response.Error
// @Failure     401 {object} response.Error
// @Failure     500 {object} response.Error
// @Router      /v1/submissions/mine [get]
func (r *V1) listMySubmissions(ctx *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(ctx)

	var req request.Page
	if err := ctx.QueryParser(&req); err != nil {
		return r.errorResponse(ctx, errs.Validation("invalid query"), "restapi - v1 - listMySubmissions")
	}
	if err := r.check(req); err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - listMySubmissions")
	}

	page := repo.SubmissionFilter{Page: req.Page, Limit: req.Limit}.Normalize()

	items, total, err := r.sub.ListByPatient(ctx.UserContext(), principal.ID, page.Page, page.Limit)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - listMySubmissions")
	}

	return ctx.JSON(response.NewPatientList(items, page.Page, page.Limit, total))
}

// @Summary     Get report link
// @Description Returns a short-lived download URL of the PDF report. Owner or admin only
// @Tags        submissions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Submission id (uuid)"
// @Success     200 {object} response.ReportURL
// @Failure     400 {object} response.Error
// @Failure     403 {object} response.Error
// @Failure     404 {object} response.Error "Submission not found or report not yet generated"
// @Failure     500 {object} response.Error
// @Router      /v1/submissions/{id}/report [get]
func (r *V1) getReport(ctx *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(ctx)

	id, err := submissionID(ctx)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - getReport")
	}

	url, err := r.sub.GetReportURL(ctx.UserContext(), id, principal)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - getReport")
	}

	return ctx.JSON(response.ReportURL{ReportURL: url})
}

func submissionID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, errs.Validation("invalid submission id")
	}
	return id, nil
}
