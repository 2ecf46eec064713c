package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/internal/models"
	"github.com/noah-isme/learner-hub-api/internal/service"
	"github.com/noah-isme/learner-hub-api/pkg/response"
)

type sessionTypeService interface {
	List(ctx context.Context) ([]models.SessionType, bool, error)
	Create(ctx context.Context, req dto.SessionTypeRequest, actor *models.JWTClaims) (*models.SessionType, error)
	Update(ctx context.Context, id string, req dto.SessionTypeRequest, actor *models.JWTClaims) (*models.SessionType, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	Reorder(ctx context.Context, req dto.ReorderSessionTypeRequest, actor *models.JWTClaims) ([]models.SessionType, error)
}

// SessionTypeHandler exposes session type administration.
type SessionTypeHandler struct {
	service sessionTypeService
}

// NewSessionTypeHandler constructs the handler.
func NewSessionTypeHandler(svc sessionTypeService) *SessionTypeHandler {
	return &SessionTypeHandler{service: svc}
}

// List godoc
// @Summary List session types ordered by rank
// @Tags Session Types
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessionType/list [get]
func (h *SessionTypeHandler) List(c *gin.Context) {
	items, hit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedList(c, service.TagSessionTypes, items, hit)
}

// Create godoc
// @Summary Create a session type at the end of the order
// @Tags Session Types
// @Accept json
// @Produce json
// @Param payload body dto.SessionTypeRequest true "Session type"
// @Success 201 {object} response.Envelope
// @Router /sessionType/create [post]
func (h *SessionTypeHandler) Create(c *gin.Context) {
	var req dto.SessionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item, "Session type created")
}

// Update godoc
// @Summary Update a session type
// @Tags Session Types
// @Accept json
// @Produce json
// @Param id path string true "Session type ID"
// @Param payload body dto.SessionTypeRequest true "Session type"
// @Success 200 {object} response.Envelope
// @Router /sessionType/update/{id} [put]
func (h *SessionTypeHandler) Update(c *gin.Context) {
	var req dto.SessionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, item, "Session type updated")
}

// Reorder godoc
// @Summary Move a session type one rank up or down
// @Tags Session Types
// @Accept json
// @Produce json
// @Param payload body dto.ReorderSessionTypeRequest true "Reorder request"
// @Success 200 {object} response.Envelope
// @Router /sessionType/reorder [patch]
func (h *SessionTypeHandler) Reorder(c *gin.Context) {
	var req dto.ReorderSessionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	items, err := h.service.Reorder(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, items, "Session types reordered")
}

// Delete godoc
// @Summary Delete a session type
// @Tags Session Types
// @Param id path string true "Session type ID"
// @Success 204
// @Router /sessionType/delete/{id} [delete]
func (h *SessionTypeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
