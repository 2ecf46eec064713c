package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/internal/models"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	applog "github.com/noah-isme/learner-hub-api/pkg/logger"
)

const samplePlanResource = "sample_plan"

type samplePlanStore interface {
	List(ctx context.Context, filter models.SamplePlanFilter) ([]models.SamplePlan, error)
	FindByID(ctx context.Context, id string) (*models.SamplePlan, error)
	Create(ctx context.Context, plan *models.SamplePlan) error
	Delete(ctx context.Context, id string) ([]string, error)
	ListCandidates(ctx context.Context, courseID string) ([]models.LearnerCandidate, error)
	ListCourseUnits(ctx context.Context, courseID string) ([]models.CourseUnit, error)
	ListDetails(ctx context.Context, planID string) ([]models.PlanDetail, error)
	ListSampledUnits(ctx context.Context, planID string) ([]models.SampledUnit, error)
	ExistingLearners(ctx context.Context, planID string, learnerIDs []string) ([]string, error)
	ApplySampledLearners(ctx context.Context, app models.SampleApplication) ([]models.PlanDetail, error)
	FindDetail(ctx context.Context, id string) (*models.PlanDetail, error)
	UpdateDetail(ctx context.Context, id string, patch models.PlanDetailPatch) (*models.PlanDetail, error)
	DeleteDetail(ctx context.Context, id string) ([]string, error)
}

// SamplePlanService runs the IQA sampling workflow for a course and IQA pair.
type SamplePlanService struct {
	repo      samplePlanStore
	cache     *CacheService
	audit     auditLogger
	queue     jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewSamplePlanService constructs the service. cache, audit and queue may be nil.
func NewSamplePlanService(repo samplePlanStore, cache *CacheService, audit auditLogger, queue jobEnqueuer, validate *validator.Validate, logger *zap.Logger) *SamplePlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SamplePlanService{repo: repo, cache: cache, audit: audit, queue: queue, validator: validate, logger: logger}
}

// WithMetrics enables sampling counters.
func (s *SamplePlanService) WithMetrics(m *MetricsService) *SamplePlanService {
	s.metrics = m
	return s
}

// ListPlans returns plans matching the optional course and IQA filters.
func (s *SamplePlanService) ListPlans(ctx context.Context, query dto.SamplePlanQuery) ([]models.SamplePlan, bool, error) {
	filter := models.SamplePlanFilter{
		CourseID: strings.TrimSpace(query.CourseID),
		IQAID:    strings.TrimSpace(query.IQAID),
	}
	plans, hit, err := cached(ctx, s.cache, s.cache.Key(TagSamplePlans, filter), func(ctx context.Context) ([]models.SamplePlan, error) {
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, false, repoError(err, "sample plan not found", "failed to list sample plans")
	}
	return plans, hit, nil
}

// CreatePlan assigns an IQA to a course.
func (s *SamplePlanService) CreatePlan(ctx context.Context, req dto.CreateSamplePlanRequest, actor *models.JWTClaims) (*models.SamplePlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid sample plan payload")
	}
	plan := &models.SamplePlan{CourseID: req.CourseID, IQAID: req.IQAID}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, repoError(err, "sample plan not found", "failed to create sample plan")
	}
	stored, err := s.repo.FindByID(ctx, plan.ID)
	if err != nil {
		return nil, repoError(err, "sample plan not found", "failed to load sample plan")
	}
	s.cache.InvalidateTags(ctx, TagSamplePlans)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionPlanCreate, samplePlanResource, stored.ID, req)
	return stored, nil
}

// DeletePlan removes a plan with all its sampled learners.
func (s *SamplePlanService) DeletePlan(ctx context.Context, id string, actor *models.JWTClaims) error {
	paths, err := s.repo.Delete(ctx, id)
	if err != nil {
		return repoError(err, "sample plan not found", "failed to delete sample plan")
	}
	enqueueFileCleanup(ctx, s.queue, s.logger, paths)
	s.cache.InvalidateTags(ctx, TagSamplePlans, TagPlanLearners)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionPlanDelete, samplePlanResource, id, nil)
	return nil
}

// GetPlanLearners builds the learner matrix of a plan: every enrolled learner with their unit selection.
func (s *SamplePlanService) GetPlanLearners(ctx context.Context, planID string) ([]models.SamplePlanLearner, bool, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, false, repoError(err, "sample plan not found", "failed to load sample plan")
	}
	rows, hit, err := cached(ctx, s.cache, s.cache.Key(TagPlanLearners, planID), func(ctx context.Context) ([]models.SamplePlanLearner, error) {
		return s.buildLearnerMatrix(ctx, plan)
	})
	if err != nil {
		return nil, false, repoError(err, "sample plan not found", "failed to load plan learners")
	}
	return rows, hit, nil
}

func (s *SamplePlanService) buildLearnerMatrix(ctx context.Context, plan *models.SamplePlan) ([]models.SamplePlanLearner, error) {
	var (
		candidates []models.LearnerCandidate
		units      []models.CourseUnit
		details    []models.PlanDetail
		sampled    []models.SampledUnit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		candidates, err = s.repo.ListCandidates(gctx, plan.CourseID)
		return err
	})
	g.Go(func() (err error) {
		units, err = s.repo.ListCourseUnits(gctx, plan.CourseID)
		return err
	})
	g.Go(func() (err error) {
		details, err = s.repo.ListDetails(gctx, plan.ID)
		return err
	})
	g.Go(func() (err error) {
		sampled, err = s.repo.ListSampledUnits(gctx, plan.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	selected := make(map[string]map[string]bool, len(details))
	for _, su := range sampled {
		if selected[su.DetailID] == nil {
			selected[su.DetailID] = map[string]bool{}
		}
		selected[su.DetailID][su.UnitCode] = true
	}
	byLearner := make(map[string]*models.PlanDetail, len(details))
	for i := range details {
		byLearner[details[i].LearnerID] = &details[i]
	}

	rows := make([]models.SamplePlanLearner, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c.LearnerID] = true
		row := models.SamplePlanLearner{
			PlanID:       plan.ID,
			LearnerID:    c.LearnerID,
			LearnerName:  c.LearnerName,
			AssessorID:   c.AssessorID,
			AssessorName: c.AssessorName,
			RiskLevel:    c.RiskLevel,
		}
		rows = append(rows, fillDetail(row, byLearner[c.LearnerID], units, selected))
	}
	// Learners sampled before they left the course still belong to the plan.
	for i := range details {
		if seen[details[i].LearnerID] {
			continue
		}
		row := models.SamplePlanLearner{PlanID: plan.ID, LearnerID: details[i].LearnerID}
		rows = append(rows, fillDetail(row, &details[i], units, selected))
	}
	return rows, nil
}

func fillDetail(row models.SamplePlanLearner, detail *models.PlanDetail, units []models.CourseUnit, selected map[string]map[string]bool) models.SamplePlanLearner {
	var picks map[string]bool
	if detail != nil {
		row.DetailID = detail.ID
		row.SampleType = detail.SampleType
		row.PlannedDate = detail.PlannedDate
		row.CompletedDate = detail.CompletedDate
		row.Status = detail.Status
		picks = selected[detail.ID]
	}
	row.Units = make([]models.Unit, 0, len(units))
	for _, u := range units {
		row.Units = append(row.Units, models.Unit{UnitCode: u.UnitCode, UnitName: u.UnitName, IsSelected: picks[u.UnitCode]})
	}
	return row
}

// ApplySampledLearners adds learners with their selected units to a plan. Either every learner is stored or none.
func (s *SamplePlanService) ApplySampledLearners(ctx context.Context, req dto.ApplySampledLearnersRequest, actor *models.JWTClaims) ([]models.PlanDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid sampled learners payload")
	}
	sampleType, err := models.ParseSampleType(req.SampleType)
	if err != nil {
		return nil, validationError(err, "invalid sample_type")
	}
	methods := make([]models.AssessmentMethod, 0, len(req.AssessmentMethods))
	for _, raw := range req.AssessmentMethods {
		m, err := models.ParseAssessmentMethod(raw)
		if err != nil {
			return nil, validationError(err, "invalid assessment method")
		}
		methods = append(methods, m)
	}

	plan, err := s.repo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, repoError(err, "sample plan not found", "failed to load sample plan")
	}
	courseUnits, err := s.repo.ListCourseUnits(ctx, plan.CourseID)
	if err != nil {
		return nil, repoError(err, "sample plan not found", "failed to load course units")
	}
	known := make(map[string]bool, len(courseUnits))
	for _, u := range courseUnits {
		known[u.UnitCode] = true
	}

	app := models.SampleApplication{PlanID: plan.ID, SampleType: sampleType, AssessmentMethods: methods}
	ids := make([]string, 0, len(req.Learners))
	listed := make(map[string]bool, len(req.Learners))
	for _, l := range req.Learners {
		if listed[l.LearnerID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("learner %s listed more than once", l.LearnerID))
		}
		listed[l.LearnerID] = true

		input := models.SampledLearnerInput{LearnerID: l.LearnerID}
		for _, u := range l.Units {
			if !u.IsSelected {
				continue
			}
			if !known[u.UnitCode] {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unit %s is not part of the course", u.UnitCode))
			}
			input.UnitCodes = append(input.UnitCodes, u.UnitCode)
		}
		if len(input.UnitCodes) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("learner %s needs at least one selected unit", l.LearnerID))
		}
		if l.PlanDate != nil {
			if input.PlannedDate, err = parseDate(*l.PlanDate); err != nil {
				return nil, validationError(err, "invalid plan_date")
			}
		}
		app.Learners = append(app.Learners, input)
		ids = append(ids, l.LearnerID)
	}

	existing, err := s.repo.ExistingLearners(ctx, plan.ID, ids)
	if err != nil {
		return nil, repoError(err, "sample plan not found", "failed to check sampled learners")
	}
	if len(existing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrAlreadySampled, fmt.Sprintf("learners already sampled: %s", strings.Join(existing, ", ")))
	}

	details, err := s.repo.ApplySampledLearners(ctx, app)
	if err != nil {
		applog.WithContext(ctx, s.logger).Error("apply sampled learners failed", zap.String("plan_id", plan.ID), zap.Error(err))
		return nil, repoError(err, "sample plan not found", "failed to apply sampled learners")
	}
	s.cache.InvalidateTags(ctx, TagPlanLearners, TagSamplePlans)
	s.metrics.ObserveSampling(string(sampleType), len(details))
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionSampleApply, samplePlanResource, plan.ID, map[string]interface{}{
		"sample_type": sampleType,
		"learners":    ids,
	})
	return details, nil
}

// UpdatePlanDetail writes only the supplied fields. Setting completed_date moves the detail to Completed.
func (s *SamplePlanService) UpdatePlanDetail(ctx context.Context, id string, req dto.UpdatePlanDetailRequest, actor *models.JWTClaims) (*models.PlanDetail, error) {
	patch, err := buildDetailPatch(req)
	if err != nil {
		return nil, err
	}
	detail, err := s.repo.UpdateDetail(ctx, id, patch)
	if err != nil {
		return nil, repoError(err, "plan detail not found", "failed to update plan detail")
	}
	if !patch.Empty() {
		s.cache.InvalidateTags(ctx, TagPlanLearners)
		emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionSampleDetailUpdate, "plan_detail", id, req)
	}
	return detail, nil
}

func buildDetailPatch(req dto.UpdatePlanDetailRequest) (models.PlanDetailPatch, error) {
	var patch models.PlanDetailPatch
	if req.SampleType != nil {
		st, err := models.ParseSampleType(*req.SampleType)
		if err != nil {
			return patch, validationError(err, "invalid sample_type")
		}
		patch.SampleType = &st
	}
	if req.PlannedDate != nil {
		d, err := parseDate(*req.PlannedDate)
		if err != nil {
			return patch, validationError(err, "invalid planned_date")
		}
		patch.PlannedDate = d
	}
	if req.CompletedDate != nil {
		d, err := parseDate(*req.CompletedDate)
		if err != nil {
			return patch, validationError(err, "invalid completed_date")
		}
		if d != nil {
			patch.CompletedDate = d
			completed := models.SampleStatusCompleted
			patch.Status = &completed
		}
	}
	if req.AssessmentMethods != nil {
		codes := make([]string, 0, len(*req.AssessmentMethods))
		for _, raw := range *req.AssessmentMethods {
			m, err := models.ParseAssessmentMethod(raw)
			if err != nil {
				return patch, validationError(err, "invalid assessment method")
			}
			codes = append(codes, string(m))
		}
		patch.AssessmentMethods = &codes
	}
	patch.AssessmentProcesses = req.AssessmentProcesses
	patch.Feedback = req.Feedback
	if req.IQAConclusion != nil {
		conclusion := append([]string{}, *req.IQAConclusion...)
		patch.IQAConclusion = &conclusion
	}
	if req.AssessorDecisionCorrect != nil {
		d, err := models.ParseDecisionCorrect(*req.AssessorDecisionCorrect)
		if err != nil {
			return patch, validationError(err, "invalid assessor_decision_correct")
		}
		patch.AssessorDecisionCorrect = &d
	}
	return patch, nil
}

// RemoveSampledLearner deletes a plan detail and its sub-resources. Stored documents are removed in the background.
func (s *SamplePlanService) RemoveSampledLearner(ctx context.Context, detailID string, actor *models.JWTClaims) error {
	paths, err := s.repo.DeleteDetail(ctx, detailID)
	if err != nil {
		return repoError(err, "plan detail not found", "failed to remove sampled learner")
	}
	enqueueFileCleanup(ctx, s.queue, s.logger, paths)
	s.cache.InvalidateTags(ctx, TagPlanLearners, TagSamplePlans)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionSampleRemove, "plan_detail", detailID, nil)
	return nil
}
