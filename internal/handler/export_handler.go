package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/pkg/response"
	"github.com/noah-isme/learner-hub-api/pkg/storage"
)

type exportService interface {
	TimelogWorkbook(ctx context.Context, q dto.TimelogExportQuery) (*dto.ExportFile, error)
	FormSubmissionPDF(ctx context.Context, id, mode string) (*dto.ExportFile, error)
	UploadSubmissionSnapshot(ctx context.Context, id string, upload storage.Upload) error
	FeedbackExport(ctx context.Context, q dto.FeedbackExportQuery) (*dto.ExportFile, error)
}

// ExportHandler streams generated timelog, form submission and feedback files.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Timelogs godoc
// @Summary Export timelogs as an Excel workbook
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param learner_id query string false "Learner"
// @Param course_id query string false "Course"
// @Param date_from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param date_to query string false "Inclusive end date (YYYY-MM-DD)"
// @Param off_the_job_only query bool false "Only off-the-job entries"
// @Success 200 {file} binary
// @Router /exports/timelogs [get]
func (h *ExportHandler) Timelogs(c *gin.Context) {
	var q dto.TimelogExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	file, err := h.service.TimelogWorkbook(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, file)
}

// FormSubmissionPDF godoc
// @Summary Export a form submission as PDF
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Submission ID"
// @Param mode query string false "text (default) or snapshot"
// @Success 200 {file} binary
// @Router /exports/form-submissions/{id}/pdf [get]
func (h *ExportHandler) FormSubmissionPDF(c *gin.Context) {
	file, err := h.service.FormSubmissionPDF(c.Request.Context(), c.Param("id"), c.Query("mode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, file)
}

// UploadSnapshot godoc
// @Summary Store a PNG capture of a form submission for snapshot-mode PDFs
// @Tags Exports
// @Accept multipart/form-data
// @Param id path string true "Submission ID"
// @Param file formData file true "PNG snapshot"
// @Success 204
// @Router /exports/form-submissions/{id}/snapshot [post]
func (h *ExportHandler) UploadSnapshot(c *gin.Context) {
	upload, err := formFile(c, "file", false)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer upload.Close()

	if err := h.service.UploadSubmissionSnapshot(c.Request.Context(), c.Param("id"), upload.Upload()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Feedback godoc
// @Summary Export course feedback as CSV or PDF
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param course_id query string false "Course"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} binary
// @Router /exports/feedback [get]
func (h *ExportHandler) Feedback(c *gin.Context) {
	var q dto.FeedbackExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	file, err := h.service.FeedbackExport(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, file)
}

func writeExport(c *gin.Context, file *dto.ExportFile) {
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
