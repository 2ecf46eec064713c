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

type acknowledgementService interface {
	List(ctx context.Context) ([]models.Acknowledgement, bool, error)
	Create(ctx context.Context, req dto.AcknowledgementRequest, upload *storage.Upload, actor *models.JWTClaims) (*models.Acknowledgement, error)
	Update(ctx context.Context, id string, req dto.AcknowledgementRequest, upload *storage.Upload, actor *models.JWTClaims) (*models.Acknowledgement, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	Clear(ctx context.Context, actor *models.JWTClaims) error
	OpenFile(ctx context.Context, token string) (*service.FileDownload, error)
}

// AcknowledgementHandler exposes acknowledgement messages.
type AcknowledgementHandler struct {
	service acknowledgementService
}

// NewAcknowledgementHandler constructs the handler.
func NewAcknowledgementHandler(svc acknowledgementService) *AcknowledgementHandler {
	return &AcknowledgementHandler{service: svc}
}

// List godoc
// @Summary List acknowledgements, newest first
// @Tags Acknowledgements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /acknowledgement/list [get]
func (h *AcknowledgementHandler) List(c *gin.Context) {
	items, hit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedList(c, service.TagAcknowledgements, items, hit)
}

// Create godoc
// @Summary Create an acknowledgement
// @Tags Acknowledgements
// @Accept multipart/form-data
// @Produce json
// @Param message formData string true "Message"
// @Param file formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Router /acknowledgement/create [post]
func (h *AcknowledgementHandler) Create(c *gin.Context) {
	req, upload, err := bindAcknowledgement(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer upload.Close()

	ack, err := h.service.Create(c.Request.Context(), req, optionalUpload(upload), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ack, "Acknowledgement created")
}

// Update godoc
// @Summary Update an acknowledgement
// @Tags Acknowledgements
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Acknowledgement ID"
// @Param message formData string true "Message"
// @Param file formData file false "Replacement attachment"
// @Success 200 {object} response.Envelope
// @Router /acknowledgement/update/{id} [put]
func (h *AcknowledgementHandler) Update(c *gin.Context) {
	req, upload, err := bindAcknowledgement(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer upload.Close()

	ack, err := h.service.Update(c.Request.Context(), c.Param("id"), req, optionalUpload(upload), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, ack, "Acknowledgement updated")
}

// Delete godoc
// @Summary Delete an acknowledgement
// @Tags Acknowledgements
// @Param id path string true "Acknowledgement ID"
// @Success 204
// @Router /acknowledgement/delete/{id} [delete]
func (h *AcknowledgementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Clear godoc
// @Summary Delete every acknowledgement
// @Tags Acknowledgements
// @Success 204
// @Router /acknowledgement/clear [delete]
func (h *AcknowledgementHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// File godoc
// @Summary Download an acknowledgement attachment through its signed token
// @Tags Acknowledgements
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /acknowledgement/files/{token} [get]
func (h *AcknowledgementHandler) File(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.service.OpenFile(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	streamDownload(c, download)
}

// bindAcknowledgement accepts multipart forms and plain JSON bodies; the file part is optional.
func bindAcknowledgement(c *gin.Context) (dto.AcknowledgementRequest, *openedUpload, error) {
	var req dto.AcknowledgementRequest
	if err := c.ShouldBind(&req); err != nil {
		return req, nil, invalidPayload(err)
	}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return req, nil, nil
	}
	upload, err := formFile(c, "file", true)
	if err != nil {
		return req, nil, err
	}
	return req, upload, nil
}

func optionalUpload(upload *openedUpload) *storage.Upload {
	if upload == nil {
		return nil
	}
	u := upload.Upload()
	return &u
}
