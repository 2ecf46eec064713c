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

const iqaQuestionColumns = "id, question, question_type, is_active, created_at, updated_at"

// IQAQuestionRepository persists the IQA question bank.
type IQAQuestionRepository struct {
	db *sqlx.DB
}

// NewIQAQuestionRepository instantiates the repository.
func NewIQAQuestionRepository(db *sqlx.DB) *IQAQuestionRepository {
	return &IQAQuestionRepository{db: db}
}

// List returns questions ordered by type then creation time.
func (r *IQAQuestionRepository) List(ctx context.Context, filter models.IQAQuestionFilter) ([]models.IQAQuestion, error) {
	query := "SELECT " + iqaQuestionColumns + " FROM iqa_questions WHERE 1=1"
	var args []interface{}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(" AND question_type = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY question_type, created_at"

	items := make([]models.IQAQuestion, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list iqa questions: %w", err)
	}
	return items, nil
}

// FindByID loads a question.
func (r *IQAQuestionRepository) FindByID(ctx context.Context, id string) (*models.IQAQuestion, error) {
	var item models.IQAQuestion
	if err := r.db.GetContext(ctx, &item, "SELECT "+iqaQuestionColumns+" FROM iqa_questions WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

const insertIQAQuestion = `INSERT INTO iqa_questions (id, question, question_type, is_active, created_at, updated_at) VALUES (:id, :question, :question_type, :is_active, :created_at, :updated_at)`

func prepareQuestion(q *models.IQAQuestion, now time.Time) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
}

// Create inserts a question.
func (r *IQAQuestionRepository) Create(ctx context.Context, q *models.IQAQuestion) error {
	prepareQuestion(q, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertIQAQuestion, q); err != nil {
		return fmt.Errorf("create iqa question: %w", err)
	}
	return nil
}

// CreateMany inserts questions in one transaction; either all rows are stored or none.
func (r *IQAQuestionRepository) CreateMany(ctx context.Context, questions []*models.IQAQuestion) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, q := range questions {
			prepareQuestion(q, now)
			if _, err := tx.NamedExecContext(ctx, insertIQAQuestion, q); err != nil {
				return fmt.Errorf("create iqa question: %w", err)
			}
		}
		return nil
	})
}

// Update overwrites the text, type and active flag of a question.
func (r *IQAQuestionRepository) Update(ctx context.Context, q *models.IQAQuestion) error {
	q.UpdatedAt = time.Now().UTC()
	const query = `UPDATE iqa_questions SET question = :question, question_type = :question_type, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, q)
	if err != nil {
		return fmt.Errorf("update iqa question: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a question.
func (r *IQAQuestionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM iqa_questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete iqa question: %w", err)
	}
	return requireAffected(res)
}
