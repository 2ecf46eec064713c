package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/internal/models"
	"github.com/noah-isme/learner-hub-api/internal/service"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	"github.com/noah-isme/learner-hub-api/pkg/response"
	"github.com/noah-isme/learner-hub-api/pkg/storage"
)

type sampleDetailService interface {
	ListActions(ctx context.Context, detailID string) ([]models.SampleAction, error)
	CreateAction(ctx context.Context, detailID string, req dto.SampleActionRequest, actor *models.JWTClaims) (*models.SampleAction, error)
	UpdateAction(ctx context.Context, id string, req dto.SampleActionRequest) (*models.SampleAction, error)
	DeleteAction(ctx context.Context, id string) error

	ListQuestions(ctx context.Context, detailID string) ([]models.SampleQuestion, error)
	CreateQuestion(ctx context.Context, detailID string, req dto.SampleQuestionRequest) (*models.SampleQuestion, error)
	UpdateQuestion(ctx context.Context, id string, req dto.SampleQuestionRequest) (*models.SampleQuestion, error)
	DeleteQuestion(ctx context.Context, id string) error

	ListForms(ctx context.Context, detailID string) ([]models.SampleAllocatedForm, error)
	AllocateForm(ctx context.Context, detailID string, req dto.SampleFormRequest) (*models.SampleAllocatedForm, error)
	UpdateForm(ctx context.Context, id string, req dto.SampleFormRequest) (*models.SampleAllocatedForm, error)
	DeleteForm(ctx context.Context, id string) error

	ListDocuments(ctx context.Context, detailID string) ([]models.SampleDocument, error)
	UploadDocument(ctx context.Context, detailID string, meta dto.SampleDocumentMeta, upload storage.Upload, actor *models.JWTClaims) (*models.SampleDocument, error)
	UpdateDocument(ctx context.Context, id string, req dto.UpdateSampleDocumentRequest) (*models.SampleDocument, error)
	DeleteDocument(ctx context.Context, id string) error
	OpenDocument(ctx context.Context, token string) (*service.FileDownload, error)
}

// SampleDetailHandler serves the actions, documents, questions and forms of a plan detail.
type SampleDetailHandler struct {
	service sampleDetailService
}

// NewSampleDetailHandler constructs the handler.
func NewSampleDetailHandler(svc sampleDetailService) *SampleDetailHandler {
	return &SampleDetailHandler{service: svc}
}

// ListActions godoc
// @Summary List follow-up actions of a plan detail
// @Tags Sample Actions
// @Produce json
// @Param id path string true "Plan detail ID"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/deatil/{id}/actions [get]
func (h *SampleDetailHandler) ListActions(c *gin.Context) {
	items, err := h.service.ListActions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateAction godoc
// @Summary Create a follow-up action
// @Tags Sample Actions
// @Accept json
// @Produce json
// @Param id path string true "Plan detail ID"
// @Param payload body dto.SampleActionRequest true "Action"
// @Success 201 {object} response.Envelope
// @Router /sample-plan/deatil/{id}/actions [post]
func (h *SampleDetailHandler) CreateAction(c *gin.Context) {
	var req dto.SampleActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.CreateAction(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item, "Action created")
}

// UpdateAction godoc
// @Summary Replace a follow-up action
// @Tags Sample Actions
// @Accept json
// @Produce json
// @Param id path string true "Action ID"
// @Param payload body dto.SampleActionRequest true "Action"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/actions/{id} [put]
func (h *SampleDetailHandler) UpdateAction(c *gin.Context) {
	var req dto.SampleActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.UpdateAction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, item, "Action updated")
}

// DeleteAction godoc
// @Summary Delete a follow-up action
// @Tags Sample Actions
// @Param id path string true "Action ID"
// @Success 204
// @Router /sample-plan/actions/{id} [delete]
func (h *SampleDetailHandler) DeleteAction(c *gin.Context) {
	if err := h.service.DeleteAction(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListQuestions godoc
// @Summary List sampling questions of a plan detail
// @Tags Sample Questions
// @Produce json
// @Param id path string true "Plan detail ID"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/deatil/{id}/questions [get]
func (h *SampleDetailHandler) ListQuestions(c *gin.Context) {
	items, err := h.service.ListQuestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateQuestion godoc
// @Summary Record a sampling question
// @Tags Sample Questions
// @Accept json
// @Produce json
// @Param id path string true "Plan detail ID"
// @Param payload body dto.SampleQuestionRequest true "Question"
// @Success 201 {object} response.Envelope
// @Router /sample-plan/deatil/{id}/questions [post]
func (h *SampleDetailHandler) CreateQuestion(c *gin.Context) {
	var req dto.SampleQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.CreateQuestion(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item, "Question created")
}

// UpdateQuestion godoc
// @Summary Replace a sampling question
// @Tags Sample Questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.SampleQuestionRequest true "Question"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/questions/{id} [put]
func (h *SampleDetailHandler) UpdateQuestion(c *gin.Context) {
	var req dto.SampleQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.UpdateQuestion(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, item, "Question updated")
}

// DeleteQuestion godoc
// @Summary Delete a sampling question
// @Tags Sample Questions
// @Param id path string true "Question ID"
// @Success 204
// @Router /sample-plan/questions/{id} [delete]
func (h *SampleDetailHandler) DeleteQuestion(c *gin.Context) {
	if err := h.service.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListForms godoc
// @Summary List forms allocated to a plan detail
// @Tags Sample Forms
// @Produce json
// @Param id path string true "Plan detail ID"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/deatil/{id}/forms [get]
func (h *SampleDetailHandler) ListForms(c *gin.Context) {
	items, err := h.service.ListForms(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// AllocateForm godoc
// @Summary Allocate a form to a plan detail
// @Tags Sample Forms
// @Accept json
// @Produce json
// @Param id path string true "Plan detail ID"
// @Param payload body dto.SampleFormRequest true "Form"
// @Success 201 {object} response.Envelope
// @Router /sample-plan/deatil/{id}/forms [post]
func (h *SampleDetailHandler) AllocateForm(c *gin.Context) {
	var req dto.SampleFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.AllocateForm(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item, "Form allocated")
}

// UpdateForm godoc
// @Summary Replace an allocated form
// @Tags Sample Forms
// @Accept json
// @Produce json
// @Param id path string true "Allocated form ID"
// @Param payload body dto.SampleFormRequest true "Form"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/forms/{id} [put]
func (h *SampleDetailHandler) UpdateForm(c *gin.Context) {
	var req dto.SampleFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.UpdateForm(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, item, "Form updated")
}

// DeleteForm godoc
// @Summary Remove an allocated form
// @Tags Sample Forms
// @Param id path string true "Allocated form ID"
// @Success 204
// @Router /sample-plan/forms/{id} [delete]
func (h *SampleDetailHandler) DeleteForm(c *gin.Context) {
	if err := h.service.DeleteForm(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDocuments godoc
// @Summary List evidence documents of a plan detail
// @Tags Sample Documents
// @Produce json
// @Param id path string true "Plan detail ID"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/deatil/{id}/documents [get]
func (h *SampleDetailHandler) ListDocuments(c *gin.Context) {
	items, err := h.service.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UploadDocument godoc
// @Summary Upload an evidence document
// @Tags Sample Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Plan detail ID"
// @Param description formData string false "Description"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /sample-plan/deatil/{id}/documents [post]
func (h *SampleDetailHandler) UploadDocument(c *gin.Context) {
	var meta dto.SampleDocumentMeta
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	upload, err := formFile(c, "file", false)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer upload.Close()

	doc, err := h.service.UploadDocument(c.Request.Context(), c.Param("id"), meta, upload.Upload(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc, "Document uploaded")
}

// UpdateDocument godoc
// @Summary Rename a document or edit its description
// @Tags Sample Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.UpdateSampleDocumentRequest true "Document metadata"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/documents/{id} [put]
func (h *SampleDetailHandler) UpdateDocument(c *gin.Context) {
	var req dto.UpdateSampleDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	doc, err := h.service.UpdateDocument(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, doc, "Document updated")
}

// DeleteDocument godoc
// @Summary Delete a document
// @Tags Sample Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /sample-plan/documents/{id} [delete]
func (h *SampleDetailHandler) DeleteDocument(c *gin.Context) {
	if err := h.service.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadDocument godoc
// @Summary Download a document through its signed token
// @Tags Sample Documents
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /sample-plan/documents/download/{token} [get]
func (h *SampleDetailHandler) DownloadDocument(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.service.OpenDocument(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	streamDownload(c, download)
}
