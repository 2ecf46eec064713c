package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/learner-hub-api/internal/models"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	"github.com/noah-isme/learner-hub-api/pkg/jobs"
	applog "github.com/noah-isme/learner-hub-api/pkg/logger"
	"github.com/noah-isme/learner-hub-api/pkg/middleware/requestid"
	"github.com/noah-isme/learner-hub-api/pkg/storage"
)

// JobStorageDelete removes stored files listed in the job payload.
const JobStorageDelete = "storage.delete"

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

// repoError maps repository failures onto API errors.
func repoError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, internal)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// parseDate accepts YYYY-MM-DD or RFC3339. Blank input yields nil.
func parseDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func actorID(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	id := actor.UserID
	return &id
}

func emitAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, actor *models.JWTClaims, action, resource, resourceID string, values interface{}) {
	if audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:    actorID(actor),
		Action:    action,
		Resource:  resource,
		IPAddress: "system",
		UserAgent: resource + "-service",
		RequestID: requestid.FromContext(ctx),
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if values != nil {
		if raw, err := json.Marshal(values); err == nil {
			entry.NewValues = raw
		}
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		applog.WithContext(ctx, logger).Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

// enqueueFileCleanup schedules removal of stored files. Failures are logged, never returned.
func enqueueFileCleanup(ctx context.Context, queue jobEnqueuer, logger *zap.Logger, paths []string) {
	if queue == nil || len(paths) == 0 {
		return
	}
	job := jobs.Job{Type: JobStorageDelete, Payload: append([]string(nil), paths...)}
	if err := queue.Enqueue(ctx, job); err != nil {
		applog.WithContext(ctx, logger).Warn("failed to enqueue file cleanup", zap.Strings("paths", paths), zap.Error(err))
	}
}

type fileRemover interface {
	Delete(name string) error
}

// StorageDeleteHandler builds the job handler that removes files queued by enqueueFileCleanup.
func StorageDeleteHandler(store fileRemover, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		paths, ok := job.Payload.([]string)
		if !ok {
			return jobs.Permanent(fmt.Errorf("storage.delete payload must be []string, got %T", job.Payload))
		}
		var failed []string
		for _, p := range paths {
			if err := store.Delete(p); err != nil {
				applog.WithContext(ctx, logger).Warn("failed to delete stored file", zap.String("path", p), zap.Error(err))
				failed = append(failed, p)
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files could not be deleted", len(failed), len(paths))
		}
		return nil
	}
}

// uploadError maps upload policy failures onto API errors.
func uploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileRequired):
		return appErrors.Clone(appErrors.ErrValidation, "file is required")
	case errors.Is(err, storage.ErrFileTooLarge):
		return appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, err.Error())
	case errors.Is(err, storage.ErrMIMENotAllowed):
		return appErrors.Wrap(err, appErrors.ErrUnsupportedMedia.Code, appErrors.ErrUnsupportedMedia.Status, err.Error())
	}
	return appErrors.Internal(err, "failed to inspect upload")
}

type fileStorage interface {
	SaveStream(name string, r io.Reader) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type urlSigner interface {
	Generate(resourceID, path string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (*storage.SignedFile, error)
}

// FileDownload bundles an opened stored file with the metadata needed to stream it.
type FileDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
	ExpiresAt time.Time
}
