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
)

type samplePlanService interface {
	ListPlans(ctx context.Context, query dto.SamplePlanQuery) ([]models.SamplePlan, bool, error)
	CreatePlan(ctx context.Context, req dto.CreateSamplePlanRequest, actor *models.JWTClaims) (*models.SamplePlan, error)
	DeletePlan(ctx context.Context, id string, actor *models.JWTClaims) error
	GetPlanLearners(ctx context.Context, planID string) ([]models.SamplePlanLearner, bool, error)
	ApplySampledLearners(ctx context.Context, req dto.ApplySampledLearnersRequest, actor *models.JWTClaims) ([]models.PlanDetail, error)
	UpdatePlanDetail(ctx context.Context, id string, req dto.UpdatePlanDetailRequest, actor *models.JWTClaims) (*models.PlanDetail, error)
	RemoveSampledLearner(ctx context.Context, detailID string, actor *models.JWTClaims) error
}

// SamplePlanHandler exposes the IQA sampling workflow.
type SamplePlanHandler struct {
	service samplePlanService
}

// NewSamplePlanHandler constructs the handler.
func NewSamplePlanHandler(svc samplePlanService) *SamplePlanHandler {
	return &SamplePlanHandler{service: svc}
}

// List godoc
// @Summary List sample plans
// @Tags Sample Plans
// @Produce json
// @Param course_id query string false "Course filter"
// @Param iqa_id query string false "IQA filter"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/list [get]
func (h *SamplePlanHandler) List(c *gin.Context) {
	var query dto.SamplePlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	query.CourseID = strings.TrimSpace(query.CourseID)
	query.IQAID = strings.TrimSpace(query.IQAID)
	plans, hit, err := h.service.ListPlans(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedList(c, service.TagSamplePlans, plans, hit)
}

// Create godoc
// @Summary Assign an IQA to a course
// @Tags Sample Plans
// @Accept json
// @Produce json
// @Param payload body dto.CreateSamplePlanRequest true "Plan payload"
// @Success 201 {object} response.Envelope
// @Router /sample-plan [post]
func (h *SamplePlanHandler) Create(c *gin.Context) {
	var req dto.CreateSamplePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	plan, err := h.service.CreatePlan(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan, "Sample plan created")
}

// Delete godoc
// @Summary Delete a sample plan with all of its sampled learners
// @Tags Sample Plans
// @Param id path string true "Plan ID"
// @Success 204
// @Router /sample-plan/{id} [delete]
func (h *SamplePlanHandler) Delete(c *gin.Context) {
	if err := h.service.DeletePlan(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Learners godoc
// @Summary Learners in a plan plus unassigned candidates with their unit matrix
// @Tags Sample Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/{id}/learners [get]
func (h *SamplePlanHandler) Learners(c *gin.Context) {
	learners, hit, err := h.service.GetPlanLearners(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedList(c, service.TagPlanLearners, learners, hit)
}

// ApplySampledLearners godoc
// @Summary Add learners with their selected units to a plan
// @Tags Sample Plans
// @Accept json
// @Produce json
// @Param payload body dto.ApplySampledLearnersRequest true "Sampled learners"
// @Success 201 {object} response.Envelope
// @Router /sample-plan/add-sampled-learners [post]
func (h *SamplePlanHandler) ApplySampledLearners(c *gin.Context) {
	var req dto.ApplySampledLearnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	details, err := h.service.ApplySampledLearners(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, details, "Sampled learners applied")
}

// UpdateDetail godoc
// @Summary Partially update a plan detail
// @Description Only keys present in the body are changed. The path keeps the historical "deatil" spelling; "detail" is an alias.
// @Tags Sample Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan detail ID"
// @Param payload body dto.UpdatePlanDetailRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /sample-plan/deatil/{id} [patch]
func (h *SamplePlanHandler) UpdateDetail(c *gin.Context) {
	var req dto.UpdatePlanDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	detail, err := h.service.UpdatePlanDetail(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, detail, "Plan detail updated")
}

// RemoveSampledLearner godoc
// @Summary Remove a sampled learner from its plan
// @Tags Sample Plans
// @Param id path string true "Plan detail ID"
// @Success 204
// @Router /sample-plan/remove-sampled-learner/{id} [delete]
func (h *SamplePlanHandler) RemoveSampledLearner(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id is required"))
		return
	}
	if err := h.service.RemoveSampledLearner(c.Request.Context(), id, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
