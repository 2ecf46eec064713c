package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/internal/models"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
)

type sessionTypeStore interface {
	List(ctx context.Context) ([]models.SessionType, error)
	FindByID(ctx context.Context, id string) (*models.SessionType, error)
	Create(ctx context.Context, st *models.SessionType) error
	Update(ctx context.Context, st *models.SessionType) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, id string, direction models.ReorderDirection) (bool, error)
}

// SessionTypeService manages session types and their display order.
type SessionTypeService struct {
	repo      sessionTypeStore
	cache     *CacheService
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionTypeService constructs the service.
func NewSessionTypeService(repo sessionTypeStore, cache *CacheService, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *SessionTypeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionTypeService{repo: repo, cache: cache, audit: audit, validator: validate, logger: logger}
}

// List returns session types in ascending order.
func (s *SessionTypeService) List(ctx context.Context) ([]models.SessionType, bool, error) {
	items, hit, err := cached(ctx, s.cache, s.cache.Key(TagSessionTypes, "list"), s.repo.List)
	if err != nil {
		return nil, false, repoError(err, "session type not found", "failed to list session types")
	}
	return items, hit, nil
}

// Create appends a session type to the end of the order.
func (s *SessionTypeService) Create(ctx context.Context, req dto.SessionTypeRequest, actor *models.JWTClaims) (*models.SessionType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session type payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	st := &models.SessionType{
		Name:        name,
		IsOffTheJob: req.IsOffTheJob,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, repoError(err, "session type not found", "failed to create session type")
	}
	s.afterWrite(ctx, actor, st.ID, st)
	return st, nil
}

// Update replaces the name and flags of a session type.
func (s *SessionTypeService) Update(ctx context.Context, id string, req dto.SessionTypeRequest, actor *models.JWTClaims) (*models.SessionType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session type payload")
	}
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "session type not found", "failed to load session type")
	}
	st.Name = strings.TrimSpace(req.Name)
	st.IsOffTheJob = req.IsOffTheJob
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, repoError(err, "session type not found", "failed to update session type")
	}
	s.afterWrite(ctx, actor, st.ID, st)
	return st, nil
}

// Delete removes a session type.
func (s *SessionTypeService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "session type not found", "failed to delete session type")
	}
	s.afterWrite(ctx, actor, id, nil)
	return nil
}

// Reorder moves a session type one rank up or down and returns the new order.
// Moving the first item up or the last item down leaves the order unchanged.
func (s *SessionTypeService) Reorder(ctx context.Context, req dto.ReorderSessionTypeRequest, actor *models.JWTClaims) ([]models.SessionType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid reorder payload")
	}
	direction, err := models.ParseReorderDirection(req.Direction)
	if err != nil {
		return nil, validationError(err, "direction must be UP or DOWN")
	}
	moved, err := s.repo.Reorder(ctx, req.ID, direction)
	if err != nil {
		return nil, repoError(err, "session type not found", "failed to reorder session types")
	}
	if moved {
		s.afterWrite(ctx, actor, req.ID, map[string]interface{}{"direction": direction})
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoError(err, "session type not found", "failed to list session types")
	}
	return items, nil
}

func (s *SessionTypeService) afterWrite(ctx context.Context, actor *models.JWTClaims, id string, values interface{}) {
	s.cache.InvalidateTags(ctx, TagSessionTypes)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionSessionTypeWrite, "session_type", id, values)
}
