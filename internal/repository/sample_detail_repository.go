package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/learner-hub-api/internal/models"
)

const (
	sampleActionColumns   = "id, plan_detail_id, action_required, target_date, status, action_with, assessor_feedback, created_by, created_at, updated_at"
	sampleDocumentColumns = "id, plan_detail_id, file_name, file_path, mime_type, size_bytes, description, uploaded_by, created_at, updated_at"
	sampleQuestionColumns = "id, plan_detail_id, question, answer, notes, created_at, updated_at"
	sampleFormColumns     = "id, plan_detail_id, form_id, form_name, description, completed, completed_at, created_at, updated_at"
)

// SampleDetailRepository persists the actions, documents, questions and forms of a plan detail.
type SampleDetailRepository struct {
	db *sqlx.DB
}

// NewSampleDetailRepository instantiates the repository.
func NewSampleDetailRepository(db *sqlx.DB) *SampleDetailRepository {
	return &SampleDetailRepository{db: db}
}

func stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	if createdAt != nil && createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func (r *SampleDetailRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return requireAffected(res)
}

// ListActions returns the actions of a detail, oldest first.
func (r *SampleDetailRepository) ListActions(ctx context.Context, detailID string) ([]models.SampleAction, error) {
	items := make([]models.SampleAction, 0)
	query := "SELECT " + sampleActionColumns + " FROM sample_actions WHERE plan_detail_id = $1 ORDER BY created_at"
	if err := r.db.SelectContext(ctx, &items, query, detailID); err != nil {
		return nil, fmt.Errorf("list sample actions: %w", err)
	}
	return items, nil
}

// CreateAction inserts an action.
func (r *SampleDetailRepository) CreateAction(ctx context.Context, action *models.SampleAction) error {
	stamp(&action.ID, &action.CreatedAt, &action.UpdatedAt)
	const query = `INSERT INTO sample_actions (id, plan_detail_id, action_required, target_date, status, action_with, assessor_feedback, created_by, created_at, updated_at) VALUES (:id, :plan_detail_id, :action_required, :target_date, :status, :action_with, :assessor_feedback, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, action); err != nil {
		return fmt.Errorf("create sample action: %w", err)
	}
	return nil
}

// FindAction loads an action.
func (r *SampleDetailRepository) FindAction(ctx context.Context, id string) (*models.SampleAction, error) {
	var item models.SampleAction
	if err := r.db.GetContext(ctx, &item, "SELECT "+sampleActionColumns+" FROM sample_actions WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateAction overwrites the mutable columns of an action.
func (r *SampleDetailRepository) UpdateAction(ctx context.Context, action *models.SampleAction) error {
	stamp(&action.ID, nil, &action.UpdatedAt)
	const query = `UPDATE sample_actions SET action_required = :action_required, target_date = :target_date, status = :status, action_with = :action_with, assessor_feedback = :assessor_feedback, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, action)
	if err != nil {
		return fmt.Errorf("update sample action: %w", err)
	}
	return requireAffected(res)
}

// DeleteAction removes an action.
func (r *SampleDetailRepository) DeleteAction(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "sample_actions", id)
}

// ListDocuments returns the documents of a detail, newest first.
func (r *SampleDetailRepository) ListDocuments(ctx context.Context, detailID string) ([]models.SampleDocument, error) {
	items := make([]models.SampleDocument, 0)
	query := "SELECT " + sampleDocumentColumns + " FROM sample_documents WHERE plan_detail_id = $1 ORDER BY created_at DESC"
	if err := r.db.SelectContext(ctx, &items, query, detailID); err != nil {
		return nil, fmt.Errorf("list sample documents: %w", err)
	}
	return items, nil
}

// CreateDocument inserts document metadata.
func (r *SampleDetailRepository) CreateDocument(ctx context.Context, doc *models.SampleDocument) error {
	stamp(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	const query = `INSERT INTO sample_documents (id, plan_detail_id, file_name, file_path, mime_type, size_bytes, description, uploaded_by, created_at, updated_at) VALUES (:id, :plan_detail_id, :file_name, :file_path, :mime_type, :size_bytes, :description, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create sample document: %w", err)
	}
	return nil
}

// FindDocument loads document metadata.
func (r *SampleDetailRepository) FindDocument(ctx context.Context, id string) (*models.SampleDocument, error) {
	var item models.SampleDocument
	if err := r.db.GetContext(ctx, &item, "SELECT "+sampleDocumentColumns+" FROM sample_documents WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateDocument overwrites the file name and description of a document.
func (r *SampleDetailRepository) UpdateDocument(ctx context.Context, doc *models.SampleDocument) error {
	stamp(&doc.ID, nil, &doc.UpdatedAt)
	const query = `UPDATE sample_documents SET file_name = :file_name, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, doc)
	if err != nil {
		return fmt.Errorf("update sample document: %w", err)
	}
	return requireAffected(res)
}

// DeleteDocument removes document metadata.
func (r *SampleDetailRepository) DeleteDocument(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "sample_documents", id)
}

// ListQuestions returns the questions of a detail, oldest first.
func (r *SampleDetailRepository) ListQuestions(ctx context.Context, detailID string) ([]models.SampleQuestion, error) {
	items := make([]models.SampleQuestion, 0)
	query := "SELECT " + sampleQuestionColumns + " FROM sample_questions WHERE plan_detail_id = $1 ORDER BY created_at"
	if err := r.db.SelectContext(ctx, &items, query, detailID); err != nil {
		return nil, fmt.Errorf("list sample questions: %w", err)
	}
	return items, nil
}

// CreateQuestion inserts a question.
func (r *SampleDetailRepository) CreateQuestion(ctx context.Context, q *models.SampleQuestion) error {
	stamp(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	const query = `INSERT INTO sample_questions (id, plan_detail_id, question, answer, notes, created_at, updated_at) VALUES (:id, :plan_detail_id, :question, :answer, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, q); err != nil {
		return fmt.Errorf("create sample question: %w", err)
	}
	return nil
}

// FindQuestion loads a question.
func (r *SampleDetailRepository) FindQuestion(ctx context.Context, id string) (*models.SampleQuestion, error) {
	var item models.SampleQuestion
	if err := r.db.GetContext(ctx, &item, "SELECT "+sampleQuestionColumns+" FROM sample_questions WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateQuestion overwrites the text, answer and notes of a question.
func (r *SampleDetailRepository) UpdateQuestion(ctx context.Context, q *models.SampleQuestion) error {
	stamp(&q.ID, nil, &q.UpdatedAt)
	const query = `UPDATE sample_questions SET question = :question, answer = :answer, notes = :notes, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, q)
	if err != nil {
		return fmt.Errorf("update sample question: %w", err)
	}
	return requireAffected(res)
}

// DeleteQuestion removes a question.
func (r *SampleDetailRepository) DeleteQuestion(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "sample_questions", id)
}

// ListForms returns the allocated forms of a detail, oldest first.
func (r *SampleDetailRepository) ListForms(ctx context.Context, detailID string) ([]models.SampleAllocatedForm, error) {
	items := make([]models.SampleAllocatedForm, 0)
	query := "SELECT " + sampleFormColumns + " FROM sample_allocated_forms WHERE plan_detail_id = $1 ORDER BY created_at"
	if err := r.db.SelectContext(ctx, &items, query, detailID); err != nil {
		return nil, fmt.Errorf("list allocated forms: %w", err)
	}
	return items, nil
}

// CreateForm allocates a form to a detail.
func (r *SampleDetailRepository) CreateForm(ctx context.Context, form *models.SampleAllocatedForm) error {
	stamp(&form.ID, &form.CreatedAt, &form.UpdatedAt)
	const query = `INSERT INTO sample_allocated_forms (id, plan_detail_id, form_id, form_name, description, completed, completed_at, created_at, updated_at) VALUES (:id, :plan_detail_id, :form_id, :form_name, :description, :completed, :completed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, form); err != nil {
		return fmt.Errorf("create allocated form: %w", err)
	}
	return nil
}

// FindForm loads an allocated form.
func (r *SampleDetailRepository) FindForm(ctx context.Context, id string) (*models.SampleAllocatedForm, error) {
	var item models.SampleAllocatedForm
	if err := r.db.GetContext(ctx, &item, "SELECT "+sampleFormColumns+" FROM sample_allocated_forms WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateForm overwrites the mutable columns of an allocated form.
func (r *SampleDetailRepository) UpdateForm(ctx context.Context, form *models.SampleAllocatedForm) error {
	stamp(&form.ID, nil, &form.UpdatedAt)
	const query = `UPDATE sample_allocated_forms SET form_name = :form_name, description = :description, completed = :completed, completed_at = :completed_at, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, form)
	if err != nil {
		return fmt.Errorf("update allocated form: %w", err)
	}
	return requireAffected(res)
}

// DeleteForm removes an allocated form.
func (r *SampleDetailRepository) DeleteForm(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "sample_allocated_forms", id)
}
