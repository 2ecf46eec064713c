package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/learner-hub-api/internal/models"
	"github.com/noah-isme/learner-hub-api/pkg/database"
)

const acknowledgementColumns = "id, message, severity, file_name, file_path, mime_type, created_by, created_at, updated_at"

// AcknowledgementRepository persists acknowledgements.
type AcknowledgementRepository struct {
	db *sqlx.DB
}

// NewAcknowledgementRepository instantiates the repository.
func NewAcknowledgementRepository(db *sqlx.DB) *AcknowledgementRepository {
	return &AcknowledgementRepository{db: db}
}

// List returns acknowledgements newest first.
func (r *AcknowledgementRepository) List(ctx context.Context) ([]models.Acknowledgement, error) {
	items := make([]models.Acknowledgement, 0)
	if err := r.db.SelectContext(ctx, &items, "SELECT "+acknowledgementColumns+" FROM acknowledgements ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("list acknowledgements: %w", err)
	}
	return items, nil
}

// FindByID loads an acknowledgement.
func (r *AcknowledgementRepository) FindByID(ctx context.Context, id string) (*models.Acknowledgement, error) {
	var item models.Acknowledgement
	if err := r.db.GetContext(ctx, &item, "SELECT "+acknowledgementColumns+" FROM acknowledgements WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts an acknowledgement.
func (r *AcknowledgementRepository) Create(ctx context.Context, ack *models.Acknowledgement) error {
	if ack.ID == "" {
		ack.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ack.CreatedAt, ack.UpdatedAt = now, now
	const query = `INSERT INTO acknowledgements (id, message, severity, file_name, file_path, mime_type, created_by, created_at, updated_at) VALUES (:id, :message, :severity, :file_name, :file_path, :mime_type, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ack); err != nil {
		return fmt.Errorf("create acknowledgement: %w", err)
	}
	return nil
}

// Update overwrites message, severity and attachment.
func (r *AcknowledgementRepository) Update(ctx context.Context, ack *models.Acknowledgement) error {
	ack.UpdatedAt = time.Now().UTC()
	const query = `UPDATE acknowledgements SET message = :message, severity = :severity, file_name = :file_name, file_path = :file_path, mime_type = :mime_type, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, ack)
	if err != nil {
		return fmt.Errorf("update acknowledgement: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an acknowledgement.
func (r *AcknowledgementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM acknowledgements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete acknowledgement: %w", err)
	}
	return requireAffected(res)
}

// Clear removes every acknowledgement and returns the attachment paths that were stored.
func (r *AcknowledgementRepository) Clear(ctx context.Context) ([]string, error) {
	var paths []string
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &paths, `SELECT file_path FROM acknowledgements WHERE file_path IS NOT NULL`); err != nil {
			return fmt.Errorf("collect acknowledgement files: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM acknowledgements`); err != nil {
			return fmt.Errorf("clear acknowledgements: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
