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

type iqaQuestionStore interface {
	List(ctx context.Context, filter models.IQAQuestionFilter) ([]models.IQAQuestion, error)
	FindByID(ctx context.Context, id string) (*models.IQAQuestion, error)
	Create(ctx context.Context, q *models.IQAQuestion) error
	CreateMany(ctx context.Context, questions []*models.IQAQuestion) error
	Update(ctx context.Context, q *models.IQAQuestion) error
	Delete(ctx context.Context, id string) error
}

// IQAQuestionService manages the IQA question bank. Stored questions always carry a concrete type.
type IQAQuestionService struct {
	repo      iqaQuestionStore
	cache     *CacheService
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIQAQuestionService constructs the service.
func NewIQAQuestionService(repo iqaQuestionStore, cache *CacheService, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *IQAQuestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IQAQuestionService{repo: repo, cache: cache, audit: audit, validator: validate, logger: logger}
}

func concreteType(raw string) (models.QuestionType, error) {
	qt, err := models.ParseQuestionType(raw)
	if err != nil {
		return "", validationError(err, "select a question type other than All")
	}
	return qt, nil
}

// List returns questions of one type, or of every type for an empty or "All" filter.
func (s *IQAQuestionService) List(ctx context.Context, query dto.IQAQuestionQuery, activeOnly bool) ([]models.IQAQuestion, bool, error) {
	qt, all, err := models.ParseQuestionTypeFilter(query.Type)
	if err != nil {
		return nil, false, validationError(err, "invalid question type filter")
	}
	filter := models.IQAQuestionFilter{ActiveOnly: activeOnly}
	if !all {
		filter.Type = &qt
	}
	items, hit, err := cached(ctx, s.cache, s.cache.Key(TagIQAQuestions, string(qt), all, activeOnly), func(ctx context.Context) ([]models.IQAQuestion, error) {
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, false, repoError(err, "question not found", "failed to list questions")
	}
	return items, hit, nil
}

// Create adds a question.
func (s *IQAQuestionService) Create(ctx context.Context, req dto.CreateIQAQuestionRequest, actor *models.JWTClaims) (*models.IQAQuestion, error) {
	qt, err := concreteType(req.QuestionType)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid question payload")
	}
	q := &models.IQAQuestion{
		Question:     strings.TrimSpace(req.Question),
		QuestionType: qt,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if q.Question == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "question is required")
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, repoError(err, "question not found", "failed to create question")
	}
	s.afterWrite(ctx, actor, q.ID, q)
	return q, nil
}

// BulkCreate adds several questions of one type in a single transaction.
func (s *IQAQuestionService) BulkCreate(ctx context.Context, req dto.BulkCreateIQAQuestionsRequest, actor *models.JWTClaims) ([]models.IQAQuestion, error) {
	qt, err := concreteType(req.QuestionType)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid questions payload")
	}
	active := req.IsActive == nil || *req.IsActive
	batch := make([]*models.IQAQuestion, 0, len(req.Questions))
	for _, text := range req.Questions {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "questions must not be blank")
		}
		batch = append(batch, &models.IQAQuestion{Question: text, QuestionType: qt, IsActive: active})
	}
	if err := s.repo.CreateMany(ctx, batch); err != nil {
		return nil, repoError(err, "question not found", "failed to create questions")
	}
	out := make([]models.IQAQuestion, 0, len(batch))
	for _, q := range batch {
		out = append(out, *q)
	}
	s.afterWrite(ctx, actor, "", map[string]interface{}{"question_type": qt, "count": len(out)})
	return out, nil
}

// Update changes the supplied fields of a question.
func (s *IQAQuestionService) Update(ctx context.Context, id string, req dto.UpdateIQAQuestionRequest, actor *models.JWTClaims) (*models.IQAQuestion, error) {
	var qt models.QuestionType
	if req.QuestionType != nil {
		parsed, err := concreteType(*req.QuestionType)
		if err != nil {
			return nil, err
		}
		qt = parsed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid question payload")
	}
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "question not found", "failed to load question")
	}
	if req.Question != nil {
		text := strings.TrimSpace(*req.Question)
		if text == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "question is required")
		}
		q.Question = text
	}
	if qt != "" {
		q.QuestionType = qt
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, repoError(err, "question not found", "failed to update question")
	}
	s.afterWrite(ctx, actor, q.ID, q)
	return q, nil
}

// Delete removes a persisted question.
func (s *IQAQuestionService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "question not found", "failed to delete question")
	}
	s.afterWrite(ctx, actor, id, nil)
	return nil
}

func (s *IQAQuestionService) afterWrite(ctx context.Context, actor *models.JWTClaims, id string, values interface{}) {
	s.cache.InvalidateTags(ctx, TagIQAQuestions)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionQuestionWrite, "iqa_question", id, values)
}
