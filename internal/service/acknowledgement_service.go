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

type acknowledgementStore interface {
	List(ctx context.Context) ([]models.Acknowledgement, error)
	FindByID(ctx context.Context, id string) (*models.Acknowledgement, error)
	Create(ctx context.Context, ack *models.Acknowledgement) error
	Update(ctx context.Context, ack *models.Acknowledgement) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) ([]string, error)
}

// AcknowledgementConfig configures attachment handling.
type AcknowledgementConfig struct {
	Policy    storage.UploadPolicy
	APIPrefix string
}

// AcknowledgementService manages acknowledgement notices and their optional attachment.
type AcknowledgementService struct {
	repo      acknowledgementStore
	storage   fileStorage
	signer    urlSigner
	cache     *CacheService
	audit     auditLogger
	queue     jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AcknowledgementConfig
	now       func() time.Time
}

// NewAcknowledgementService constructs the service.
func NewAcknowledgementService(repo acknowledgementStore, store fileStorage, signer urlSigner, cache *CacheService, audit auditLogger, queue jobEnqueuer, validate *validator.Validate, logger *zap.Logger, cfg AcknowledgementConfig) *AcknowledgementService {
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
	return &AcknowledgementService{
		repo:      repo,
		storage:   store,
		signer:    signer,
		cache:     cache,
		audit:     audit,
		queue:     queue,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// List returns acknowledgements newest first.
func (s *AcknowledgementService) List(ctx context.Context) ([]models.Acknowledgement, bool, error) {
	rows, hit, err := cached(ctx, s.cache, s.cache.Key(TagAcknowledgements, "list"), func(ctx context.Context) ([]cachedAcknowledgement, error) {
		items, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]cachedAcknowledgement, 0, len(items))
		for _, a := range items {
			rows = append(rows, cachedAcknowledgement{Acknowledgement: a, StoredPath: a.FilePath})
		}
		return rows, nil
	})
	if err != nil {
		return nil, false, repoError(err, "acknowledgement not found", "failed to list acknowledgements")
	}
	// Signed URLs expire, so they are minted per response and never cached.
	items := make([]models.Acknowledgement, 0, len(rows))
	for _, row := range rows {
		ack := row.Acknowledgement
		ack.FilePath = row.StoredPath
		s.sign(&ack)
		items = append(items, ack)
	}
	return items, hit, nil
}

// cachedAcknowledgement keeps the storage path, which the API representation hides.
type cachedAcknowledgement struct {
	models.Acknowledgement
	StoredPath *string `json:"stored_path,omitempty"`
}

func (s *AcknowledgementService) sign(ack *models.Acknowledgement) {
	ack.FileURL = ""
	if s.signer == nil || ack.FilePath == nil || *ack.FilePath == "" {
		return
	}
	token, _, err := s.signer.Generate(ack.ID, *ack.FilePath)
	if err != nil {
		s.logger.Warn("failed to sign acknowledgement file", zap.String("id", ack.ID), zap.Error(err))
		return
	}
	ack.FileURL = fmt.Sprintf("%s/acknowledgement/files/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
}

func (s *AcknowledgementService) validate(req dto.AcknowledgementRequest) (string, models.AcknowledgementSeverity, error) {
	message := strings.TrimSpace(req.Message)
	req.Message = message
	if err := s.validator.Struct(req); err != nil {
		return "", "", validationError(err, "message is required and must be at most 2000 characters")
	}
	severity, err := models.ParseAcknowledgementSeverity(req.Severity)
	if err != nil {
		return "", "", appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return message, severity, nil
}

// storeAttachment validates and saves an optional upload. It returns nil fields when there is no file.
func (s *AcknowledgementService) storeAttachment(upload *storage.Upload) (name, path, mimeType *string, err error) {
	if upload == nil || upload.Content == nil {
		return nil, nil, nil, nil
	}
	detected, err := s.cfg.Policy.Inspect(*upload)
	if err != nil {
		return nil, nil, nil, uploadError(err)
	}
	stored, err := s.storage.SaveStream(storage.GenerateName("acknowledgements", upload.Filename, detected, s.now()), upload.Content)
	if err != nil {
		return nil, nil, nil, appErrors.Internal(err, "failed to persist attachment")
	}
	base := filepath.Base(upload.Filename)
	return &base, &stored, &detected, nil
}

// Create stores a new acknowledgement with an optional attachment.
func (s *AcknowledgementService) Create(ctx context.Context, req dto.AcknowledgementRequest, upload *storage.Upload, actor *models.JWTClaims) (*models.Acknowledgement, error) {
	message, severity, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	name, path, mimeType, err := s.storeAttachment(upload)
	if err != nil {
		return nil, err
	}
	ack := &models.Acknowledgement{Message: message, Severity: severity, FileName: name, FilePath: path, MimeType: mimeType}
	if actor != nil {
		ack.CreatedBy = actor.UserID
	}
	if err := s.repo.Create(ctx, ack); err != nil {
		if path != nil {
			_ = s.storage.Delete(*path)
		}
		return nil, repoError(err, "acknowledgement not found", "failed to create acknowledgement")
	}
	s.afterWrite(ctx, actor, ack.ID, ack.Message)
	s.sign(ack)
	return ack, nil
}

// Update replaces the message and, when supplied, the severity and attachment.
func (s *AcknowledgementService) Update(ctx context.Context, id string, req dto.AcknowledgementRequest, upload *storage.Upload, actor *models.JWTClaims) (*models.Acknowledgement, error) {
	message, severity, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	ack, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "acknowledgement not found", "failed to load acknowledgement")
	}
	name, path, mimeType, err := s.storeAttachment(upload)
	if err != nil {
		return nil, err
	}
	var replaced []string
	if path != nil {
		if ack.FilePath != nil {
			replaced = append(replaced, *ack.FilePath)
		}
		ack.FileName, ack.FilePath, ack.MimeType = name, path, mimeType
	}
	ack.Message = message
	if strings.TrimSpace(req.Severity) != "" || ack.Severity == "" {
		ack.Severity = severity
	}
	if err := s.repo.Update(ctx, ack); err != nil {
		if path != nil {
			_ = s.storage.Delete(*path)
		}
		return nil, repoError(err, "acknowledgement not found", "failed to update acknowledgement")
	}
	enqueueFileCleanup(ctx, s.queue, s.logger, replaced)
	s.afterWrite(ctx, actor, ack.ID, ack.Message)
	s.sign(ack)
	return ack, nil
}

// Delete removes one acknowledgement.
func (s *AcknowledgementService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	ack, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return repoError(err, "acknowledgement not found", "failed to load acknowledgement")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "acknowledgement not found", "failed to delete acknowledgement")
	}
	if ack.FilePath != nil {
		enqueueFileCleanup(ctx, s.queue, s.logger, []string{*ack.FilePath})
	}
	s.afterWrite(ctx, actor, id, nil)
	return nil
}

// Clear removes every acknowledgement.
func (s *AcknowledgementService) Clear(ctx context.Context, actor *models.JWTClaims) error {
	paths, err := s.repo.Clear(ctx)
	if err != nil {
		return repoError(err, "acknowledgement not found", "failed to clear acknowledgements")
	}
	enqueueFileCleanup(ctx, s.queue, s.logger, paths)
	s.afterWrite(ctx, actor, "", map[string]interface{}{"cleared": true})
	return nil
}

// OpenFile resolves a signed attachment token to the stored file.
func (s *AcknowledgementService) OpenFile(ctx context.Context, token string) (*FileDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	signed, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.ErrInvalidToken
	}
	ack, err := s.repo.FindByID(ctx, signed.ResourceID)
	if err != nil {
		return nil, repoError(err, "acknowledgement not found", "failed to load acknowledgement")
	}
	if ack.FilePath == nil || *ack.FilePath != signed.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(signed.Path)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open attachment")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Internal(err, "failed to read attachment metadata")
	}
	download := &FileDownload{File: file, SizeBytes: info.Size(), ExpiresAt: signed.ExpiresAt}
	if ack.FileName != nil {
		download.Filename = *ack.FileName
	}
	if ack.MimeType != nil {
		download.MimeType = *ack.MimeType
	}
	return download, nil
}

func (s *AcknowledgementService) afterWrite(ctx context.Context, actor *models.JWTClaims, id string, values interface{}) {
	s.cache.InvalidateTags(ctx, TagAcknowledgements)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionAcknowledgement, "acknowledgement", id, values)
}
