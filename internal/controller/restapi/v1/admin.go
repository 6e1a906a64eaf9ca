package v1

import (
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/middleware"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/request"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/oral-screening/internal/dto"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/repo"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

// @Summary     List submissions
// @Description Newest first, optionally filtered by status. Annotation data is not included
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Status filter" Enums(uploaded, annotated, reported)
// @Param       page   query int    false "Page, starting at 1"
// @Param       limit  query int    false "Page size, up to 100"
// @Success     200 {object} response.SubmissionList{submissions=[]response.AdminSummary}
// @Failure     400 {object} response.Error
// @Failure     403 {object} response.Error
// @Failure     500 {object} response.Error
// @Router      /v1/admin/submissions [get]
func (r *V1) listSubmissions(ctx *fiber.Ctx) error {
	var req request.ListSubmissions
	if err := ctx.QueryParser(&req); err != nil {
		return r.errorResponse(ctx, errs.Validation("invalid query"), "restapi - v1 - listSubmissions")
	}
	if err := r.check(req); err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - listSubmissions")
	}

	filter := repo.SubmissionFilter{Page: req.Page, Limit: req.Limit}.Normalize()
	if req.Status != "" {
		st, err := entity.ParseStatus(req.Status)
		if err != nil {
			return r.errorResponse(ctx, err, "restapi - v1 - listSubmissions")
		}
		filter.Status = &st
	}

	items, total, err := r.sub.List(ctx.UserContext(), filter)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - listSubmissions")
	}

	return ctx.JSON(response.NewAdminList(items, filter.Page, filter.Limit, total))
}

// @Summary     Get submission
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Submission id (uuid)"
// @Success     200 {object} response.Envelope{submission=response.AdminSubmission}
// @Failure     400 {object} response.Error
// @Failure     404 {object} response.Error
// @Failure     500 {object} response.Error
// @Router      /v1/admin/submissions/{id} [get]
func (r *V1) getSubmission(ctx *fiber.Ctx) error {
	id, err := submissionID(ctx)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - getSubmission")
	}

	s, err := r.sub.GetByID(ctx.UserContext(), id)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - getSubmission")
	}

	return ctx.JSON(response.Envelope{Submission: response.NewAdminSubmission(s)})
}

// @Summary     Annotate submission
// @Description Replaces annotations, overlay images and admin notes. Images without a client rendering are drawn server-side
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path string                     true "Submission id (uuid)"
// @Param       body body request.AnnotateSubmission true "Annotations per image"
// @Success     200 {object} response.Envelope{submission=response.AdminSubmission}
// @Failure     400 {object} response.Error
// @Failure     404 {object} response.Error
// @Failure     409 {object} response.Error
// @Failure     500 {object} response.Error
// @Router      /v1/admin/submissions/{id}/annotate [post]
func (r *V1) annotateSubmission(ctx *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(ctx)

	id, err := submissionID(ctx)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - annotateSubmission")
	}

	var req request.AnnotateSubmission
	if err = ctx.BodyParser(&req); err != nil {
		return r.errorResponse(ctx, errs.Validation("invalid JSON body"), "restapi - v1 - annotateSubmission")
	}
	if err = r.check(req); err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - annotateSubmission")
	}

	set, err := validate.AnnotationSet(req.AnnotationData)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - annotateSubmission")
	}

	s, err := r.sub.Annotate(ctx.UserContext(), dto.AnnotateSubmission{
		SubmissionID:   id,
		AdminID:        principal.ID,
		Annotations:    set,
		RenderedImages: req.AnnotatedImageData,
		AdminNotes:     req.AdminNotes,
	})
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - annotateSubmission")
	}

	return ctx.JSON(response.Envelope{
		Message:    "Annotation saved successfully",
		Submission: response.NewAdminSubmission(s),
	})
}

// @Summary     Generate PDF report
// @Description Composes the report of an annotated submission and moves it to reported
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Submission id (uuid)"
// @Success     200 {object} response.GeneratedReport
// @Failure     400 {object} response.Error
// @Failure     404 {object} response.Error
// @Failure     409 {object} response.Error "Submission must be annotated first"
// @Failure     500 {object} response.Error
// @Router      /v1/admin/submissions/{id}/report [post]
func (r *V1) generateReport(ctx *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(ctx)

	id, err := submissionID(ctx)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - generateReport")
	}

	s, err := r.sub.GenerateReport(ctx.UserContext(), id)
	if err != nil {
		return r.errorResponse(ctx, err, "restapi - v1 - generateReport")
	}

	resp := response.GeneratedReport{
		Message:    "PDF report generated successfully",
		Submission: response.NewAdminSubmission(s),
	}

	// the report is stored either way; a failed link only leaves reportUrl empty
	url, err := r.sub.GetReportURL(ctx.UserContext(), id, principal)
	if err != nil {
		r.logger.Warn("restapi - v1 - generateReport - GetReportURL: %v", err)
	} else {
		resp.ReportURL = url
	}

	return ctx.JSON(resp)
}
