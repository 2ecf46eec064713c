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

type iqaQuestionService interface {
	List(ctx context.Context, query dto.IQAQuestionQuery, activeOnly bool) ([]models.IQAQuestion, bool, error)
	Create(ctx context.Context, req dto.CreateIQAQuestionRequest, actor *models.JWTClaims) (*models.IQAQuestion, error)
	BulkCreate(ctx context.Context, req dto.BulkCreateIQAQuestionsRequest, actor *models.JWTClaims) ([]models.IQAQuestion, error)
	Update(ctx context.Context, id string, req dto.UpdateIQAQuestionRequest, actor *models.JWTClaims) (*models.IQAQuestion, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// IQAQuestionHandler exposes the IQA question bank.
type IQAQuestionHandler struct {
	service iqaQuestionService
}

// NewIQAQuestionHandler constructs the handler.
func NewIQAQuestionHandler(svc iqaQuestionService) *IQAQuestionHandler {
	return &IQAQuestionHandler{service: svc}
}

// AdminList godoc
// @Summary List IQA questions
// @Description An empty type or "All" returns every question.
// @Tags IQA Questions
// @Produce json
// @Param type query string false "Question type"
// @Success 200 {object} response.Envelope
// @Router /iqa-questions/admin/questions [get]
func (h *IQAQuestionHandler) AdminList(c *gin.Context) {
	h.list(c, false)
}

// ActiveList godoc
// @Summary List active IQA questions
// @Tags IQA Questions
// @Produce json
// @Param type query string false "Question type"
// @Success 200 {object} response.Envelope
// @Router /iqa-questions/questions [get]
func (h *IQAQuestionHandler) ActiveList(c *gin.Context) {
	h.list(c, true)
}

func (h *IQAQuestionHandler) list(c *gin.Context, activeOnly bool) {
	var query dto.IQAQuestionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	questions, hit, err := h.service.List(c.Request.Context(), query, activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedList(c, service.TagIQAQuestions, questions, hit)
}

// Create godoc
// @Summary Create an IQA question
// @Tags IQA Questions
// @Accept json
// @Produce json
// @Param payload body dto.CreateIQAQuestionRequest true "Question"
// @Success 201 {object} response.Envelope
// @Router /iqa-questions/admin/questions [post]
func (h *IQAQuestionHandler) Create(c *gin.Context) {
	var req dto.CreateIQAQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	question, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, question, "Question created")
}

// BulkCreate godoc
// @Summary Create several IQA questions of one type
// @Tags IQA Questions
// @Accept json
// @Produce json
// @Param payload body dto.BulkCreateIQAQuestionsRequest true "Questions"
// @Success 201 {object} response.Envelope
// @Router /iqa-questions/admin/questions/bulk [post]
func (h *IQAQuestionHandler) BulkCreate(c *gin.Context) {
	var req dto.BulkCreateIQAQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	questions, err := h.service.BulkCreate(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, questions, "Questions created")
}

// Update godoc
// @Summary Update an IQA question
// @Tags IQA Questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.UpdateIQAQuestionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /iqa-questions/admin/questions/{id} [patch]
func (h *IQAQuestionHandler) Update(c *gin.Context) {
	var req dto.UpdateIQAQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	question, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, question, "Question updated")
}

// Delete godoc
// @Summary Delete an IQA question
// @Tags IQA Questions
// @Param id path string true "Question ID"
// @Success 204
// @Router /iqa-questions/admin/questions/{id} [delete]
func (h *IQAQuestionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
