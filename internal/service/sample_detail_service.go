package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/internal/models"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	"github.com/noah-isme/learner-hub-api/pkg/storage"
)

type sampleDetailStore interface {
	ListActions(ctx context.Context, detailID string) ([]models.SampleAction, error)
	CreateAction(ctx context.Context, action *models.SampleAction) error
	FindAction(ctx context.Context, id string) (*models.SampleAction, error)
	UpdateAction(ctx context.Context, action *models.SampleAction) error
	DeleteAction(ctx context.Context, id string) error

	ListDocuments(ctx context.Context, detailID string) ([]models.SampleDocument, error)
	CreateDocument(ctx context.Context, doc *models.SampleDocument) error
	FindDocument(ctx context.Context, id string) (*models.SampleDocument, error)
	UpdateDocument(ctx context.Context, doc *models.SampleDocument) error
	DeleteDocument(ctx context.Context, id string) error

	ListQuestions(ctx context.Context, detailID string) ([]models.SampleQuestion, error)
	CreateQuestion(ctx context.Context, q *models.SampleQuestion) error
	FindQuestion(ctx context.Context, id string) (*models.SampleQuestion, error)
	UpdateQuestion(ctx context.Context, q *models.SampleQuestion) error
	DeleteQuestion(ctx context.Context, id string) error

	ListForms(ctx context.Context, detailID string) ([]models.SampleAllocatedForm, error)
	CreateForm(ctx context.Context, form *models.SampleAllocatedForm) error
	FindForm(ctx context.Context, id string) (*models.SampleAllocatedForm, error)
	UpdateForm(ctx context.Context, form *models.SampleAllocatedForm) error
	DeleteForm(ctx context.Context, id string) error
}

type planDetailFinder interface {
	FindDetail(ctx context.Context, id string) (*models.PlanDetail, error)
}

// SampleDetailConfig configures document handling.
type SampleDetailConfig struct {
	Policy    storage.UploadPolicy
	APIPrefix string
}

// SampleDetailService manages the actions, documents, questions and forms attached to a plan detail.
type SampleDetailService struct {
	repo      sampleDetailStore
	details   planDetailFinder
	storage   fileStorage
	signer    urlSigner
	audit     auditLogger
	queue     jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SampleDetailConfig
	now       func() time.Time
}

// NewSampleDetailService constructs the service with defaults.
func NewSampleDetailService(repo sampleDetailStore, details planDetailFinder, store fileStorage, signer urlSigner, audit auditLogger, queue jobEnqueuer, validate *validator.Validate, logger *zap.Logger, cfg SampleDetailConfig) *SampleDetailService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Policy.MaxBytes <= 0 {
		cfg.Policy = storage.NewUploadPolicy(0, nil)
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &SampleDetailService{
		repo:      repo,
		details:   details,
		storage:   store,
		signer:    signer,
		audit:     audit,
		queue:     queue,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *SampleDetailService) ensureDetail(ctx context.Context, detailID string) error {
	if _, err := s.details.FindDetail(ctx, detailID); err != nil {
		return repoError(err, "plan detail not found", "failed to load plan detail")
	}
	return nil
}

// ListActions returns the follow-up actions of a plan detail.
func (s *SampleDetailService) ListActions(ctx context.Context, detailID string) ([]models.SampleAction, error) {
	if err := s.ensureDetail(ctx, detailID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListActions(ctx, detailID)
	if err != nil {
		return nil, repoError(err, "action not found", "failed to list actions")
	}
	return items, nil
}

func (s *SampleDetailService) applyAction(action *models.SampleAction, req dto.SampleActionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid action payload")
	}
	status := models.ActionPending
	if strings.TrimSpace(req.Status) != "" {
		parsed, err := models.ParseActionStatus(req.Status)
		if err != nil {
			return validationError(err, "invalid action status")
		}
		status = parsed
	}
	var target *time.Time
	if req.TargetDate != nil {
		d, err := parseDate(*req.TargetDate)
		if err != nil {
			return validationError(err, "invalid target_date")
		}
		target = d
	}
	action.ActionRequired = req.ActionRequired
	action.TargetDate = target
	action.Status = status
	action.ActionWith = req.ActionWith
	action.AssessorFeedback = req.AssessorFeedback
	return nil
}

// CreateAction raises a follow-up action on a plan detail.
func (s *SampleDetailService) CreateAction(ctx context.Context, detailID string, req dto.SampleActionRequest, actor *models.JWTClaims) (*models.SampleAction, error) {
	action := &models.SampleAction{PlanDetailID: detailID}
	if actor != nil {
		action.CreatedBy = actor.UserID
	}
	if err := s.applyAction(action, req); err != nil {
		return nil, err
	}
	if err := s.ensureDetail(ctx, detailID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateAction(ctx, action); err != nil {
		return nil, repoError(err, "action not found", "failed to create action")
	}
	return action, nil
}

// UpdateAction replaces the editable fields of an action. Any status may follow any other.
func (s *SampleDetailService) UpdateAction(ctx context.Context, id string, req dto.SampleActionRequest) (*models.SampleAction, error) {
	action, err := s.repo.FindAction(ctx, id)
	if err != nil {
		return nil, repoError(err, "action not found", "failed to load action")
	}
	if err := s.applyAction(action, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAction(ctx, action); err != nil {
		return nil, repoError(err, "action not found", "failed to update action")
	}
	return action, nil
}

// DeleteAction removes an action.
func (s *SampleDetailService) DeleteAction(ctx context.Context, id string) error {
	if err := s.repo.DeleteAction(ctx, id); err != nil {
		return repoError(err, "action not found", "failed to delete action")
	}
	return nil
}

// ListQuestions returns the questions recorded for a plan detail.
func (s *SampleDetailService) ListQuestions(ctx context.Context, detailID string) ([]models.SampleQuestion, error) {
	if err := s.ensureDetail(ctx, detailID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListQuestions(ctx, detailID)
	if err != nil {
		return nil, repoError(err, "question not found", "failed to list questions")
	}
	return items, nil
}

func (s *SampleDetailService) applyQuestion(q *models.SampleQuestion, req dto.SampleQuestionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid question payload")
	}
	answer, err := models.ParseQuestionAnswer(req.Answer)
	if err != nil {
		return validationError(err, "invalid answer")
	}
	q.Question = strings.TrimSpace(req.Question)
	q.Answer = answer
	q.Notes = req.Notes
	return nil
}

// CreateQuestion records a sampling question on a plan detail.
func (s *SampleDetailService) CreateQuestion(ctx context.Context, detailID string, req dto.SampleQuestionRequest) (*models.SampleQuestion, error) {
	q := &models.SampleQuestion{PlanDetailID: detailID}
	if err := s.applyQuestion(q, req); err != nil {
		return nil, err
	}
	if err := s.ensureDetail(ctx, detailID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateQuestion(ctx, q); err != nil {
		return nil, repoError(err, "question not found", "failed to create question")
	}
	return q, nil
}

// UpdateQuestion replaces a sampling question.
func (s *SampleDetailService) UpdateQuestion(ctx context.Context, id string, req dto.SampleQuestionRequest) (*models.SampleQuestion, error) {
	q, err := s.repo.FindQuestion(ctx, id)
	if err != nil {
		return nil, repoError(err, "question not found", "failed to load question")
	}
	if err := s.applyQuestion(q, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		return nil, repoError(err, "question not found", "failed to update question")
	}
	return q, nil
}

// DeleteQuestion removes a sampling question.
func (s *SampleDetailService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		return repoError(err, "question not found", "failed to delete question")
	}
	return nil
}

// ListForms returns the forms allocated to a plan detail.
func (s *SampleDetailService) ListForms(ctx context.Context, detailID string) ([]models.SampleAllocatedForm, error) {
	if err := s.ensureDetail(ctx, detailID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListForms(ctx, detailID)
	if err != nil {
		return nil, repoError(err, "form not found", "failed to list allocated forms")
	}
	return items, nil
}

func (s *SampleDetailService) applyForm(form *models.SampleAllocatedForm, req dto.SampleFormRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid form payload")
	}
	form.FormID = req.FormID
	form.FormName = strings.TrimSpace(req.FormName)
	form.Description = req.Description
	switch {
	case req.Completed && !form.Completed:
		now := s.now().UTC()
		form.CompletedAt = &now
	case !req.Completed:
		form.CompletedAt = nil
	}
	form.Completed = req.Completed
	return nil
}

// AllocateForm allocates a form to a plan detail.
func (s *SampleDetailService) AllocateForm(ctx context.Context, detailID string, req dto.SampleFormRequest) (*models.SampleAllocatedForm, error) {
	form := &models.SampleAllocatedForm{PlanDetailID: detailID}
	if err := s.applyForm(form, req); err != nil {
		return nil, err
	}
	if err := s.ensureDetail(ctx, detailID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateForm(ctx, form); err != nil {
		return nil, repoError(err, "form not found", "failed to allocate form")
	}
	return form, nil
}

// UpdateForm edits an allocated form. Completing it stamps completed_at once.
func (s *SampleDetailService) UpdateForm(ctx context.Context, id string, req dto.SampleFormRequest) (*models.SampleAllocatedForm, error) {
	form, err := s.repo.FindForm(ctx, id)
	if err != nil {
		return nil, repoError(err, "form not found", "failed to load allocated form")
	}
	if err := s.applyForm(form, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateForm(ctx, form); err != nil {
		return nil, repoError(err, "form not found", "failed to update allocated form")
	}
	return form, nil
}

// DeleteForm removes an allocated form.
func (s *SampleDetailService) DeleteForm(ctx context.Context, id string) error {
	if err := s.repo.DeleteForm(ctx, id); err != nil {
		return repoError(err, "form not found", "failed to delete allocated form")
	}
	return nil
}

// ListDocuments returns the documents of a plan detail with signed download URLs.
func (s *SampleDetailService) ListDocuments(ctx context.Context, detailID string) ([]models.SampleDocument, error) {
	if err := s.ensureDetail(ctx, detailID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListDocuments(ctx, detailID)
	if err != nil {
		return nil, repoError(err, "document not found", "failed to list documents")
	}
	for i := range items {
		s.sign(&items[i])
	}
	return items, nil
}

func (s *SampleDetailService) sign(doc *models.SampleDocument) {
	if s.signer == nil || doc.FilePath == "" {
		return
	}
	token, _, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		s.logger.Warn("failed to sign document url", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}
	doc.DownloadURL = fmt.Sprintf("%s/sample-plan/documents/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
}

// UploadDocument stores an evidence file and records its metadata.
func (s *SampleDetailService) UploadDocument(ctx context.Context, detailID string, meta dto.SampleDocumentMeta, upload storage.Upload, actor *models.JWTClaims) (*models.SampleDocument, error) {
	if err := s.validator.Struct(meta); err != nil {
		return nil, validationError(err, "invalid document payload")
	}
	mimeType, err := s.cfg.Policy.Inspect(upload)
	if err != nil {
		return nil, uploadError(err)
	}
	if err := s.ensureDetail(ctx, detailID); err != nil {
		return nil, err
	}
	name := storage.GenerateName("plan-details/"+detailID, upload.Filename, mimeType, s.now())
	path, err := s.storage.SaveStream(name, upload.Content)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to persist document")
	}
	doc := &models.SampleDocument{
		PlanDetailID: detailID,
		FileName:     filepath.Base(upload.Filename),
		FilePath:     path,
		MimeType:     mimeType,
		SizeBytes:    upload.Size,
		Description:  meta.Description,
	}
	if actor != nil {
		doc.UploadedBy = actor.UserID
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		_ = s.storage.Delete(path)
		return nil, repoError(err, "document not found", "failed to create document metadata")
	}
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionDocumentUpload, "sample_document", doc.ID, map[string]interface{}{
		"plan_detail_id": detailID,
		"file_name":      doc.FileName,
	})
	s.sign(doc)
	return doc, nil
}

// UpdateDocument renames a document or edits its description.
func (s *SampleDetailService) UpdateDocument(ctx context.Context, id string, req dto.UpdateSampleDocumentRequest) (*models.SampleDocument, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid document payload")
	}
	doc, err := s.repo.FindDocument(ctx, id)
	if err != nil {
		return nil, repoError(err, "document not found", "failed to load document")
	}
	doc.FileName = strings.TrimSpace(req.FileName)
	doc.Description = req.Description
	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return nil, repoError(err, "document not found", "failed to update document")
	}
	s.sign(doc)
	return doc, nil
}

// DeleteDocument removes document metadata and schedules removal of the stored file.
func (s *SampleDetailService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.repo.FindDocument(ctx, id)
	if err != nil {
		return repoError(err, "document not found", "failed to load document")
	}
	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return repoError(err, "document not found", "failed to delete document")
	}
	enqueueFileCleanup(ctx, s.queue, s.logger, []string{doc.FilePath})
	return nil
}

// OpenDocument resolves a signed download token to the stored file.
func (s *SampleDetailService) OpenDocument(ctx context.Context, token string) (*FileDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	signed, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.ErrInvalidToken
	}
	doc, err := s.repo.FindDocument(ctx, signed.ResourceID)
	if err != nil {
		return nil, repoError(err, "document not found", "failed to load document")
	}
	if doc.FilePath != signed.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(doc.FilePath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open document")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Internal(err, "failed to read document metadata")
	}
	return &FileDownload{
		File:      file,
		Filename:  doc.FileName,
		MimeType:  doc.MimeType,
		SizeBytes: info.Size(),
		ExpiresAt: signed.ExpiresAt,
	}, nil
}
