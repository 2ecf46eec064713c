package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/learner-hub-api/internal/models"
)

// ExportSourceRepository reads the data behind timelog, form submission and feedback exports.
type ExportSourceRepository struct {
	db *sqlx.DB
}

// NewExportSourceRepository instantiates the repository.
func NewExportSourceRepository(db *sqlx.DB) *ExportSourceRepository {
	return &ExportSourceRepository{db: db}
}

// ListTimelogs returns timelogs matching filter ordered by activity date. Date bounds are inclusive.
func (r *ExportSourceRepository) ListTimelogs(ctx context.Context, filter models.TimelogFilter) ([]models.Timelog, error) {
	query := `SELECT t.id, t.learner_id, l.full_name AS learner_name, t.course_id, c.name AS course_name, st.name AS session_type_name, t.activity_date, t.duration, st.is_off_the_job, t.activity, t.description FROM timelogs t JOIN users l ON l.id = t.learner_id JOIN courses c ON c.id = t.course_id JOIN session_types st ON st.id = t.session_type_id WHERE 1=1`
	var args []interface{}
	if filter.LearnerID != "" {
		args = append(args, filter.LearnerID)
		query += fmt.Sprintf(" AND t.learner_id = $%d", len(args))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		query += fmt.Sprintf(" AND t.course_id = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND t.activity_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND t.activity_date <= $%d", len(args))
	}
	if filter.OffTheJobOnly {
		query += " AND st.is_off_the_job = TRUE"
	}
	query += " ORDER BY t.activity_date ASC"

	items := make([]models.Timelog, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list timelogs: %w", err)
	}
	return items, nil
}

// FindSubmission loads a form submission with its answers in position order.
func (r *ExportSourceRepository) FindSubmission(ctx context.Context, id string) (*models.FormSubmission, error) {
	const query = `SELECT s.id, s.form_id, f.name AS form_name, s.learner_id, l.full_name AS learner_name, s.submitted_by, s.submitted_at, s.snapshot_path FROM form_submissions s JOIN forms f ON f.id = s.form_id JOIN users l ON l.id = s.learner_id WHERE s.id = $1`
	var sub models.FormSubmission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	answers := make([]models.FormAnswer, 0)
	if err := r.db.SelectContext(ctx, &answers, `SELECT submission_id, section, question, answer, position FROM form_submission_answers WHERE submission_id = $1 ORDER BY position`, id); err != nil {
		return nil, fmt.Errorf("list submission answers: %w", err)
	}
	sub.Answers = answers
	return &sub, nil
}

// SetSubmissionSnapshot records the stored snapshot image of a submission.
func (r *ExportSourceRepository) SetSubmissionSnapshot(ctx context.Context, id, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE form_submissions SET snapshot_path = $1 WHERE id = $2`, path, id)
	if err != nil {
		return fmt.Errorf("set submission snapshot: %w", err)
	}
	return requireAffected(res)
}

// ListFeedback returns course feedback, optionally for one course, newest first.
func (r *ExportSourceRepository) ListFeedback(ctx context.Context, courseID string) ([]models.Feedback, error) {
	query := `SELECT fb.id, fb.course_id, c.name AS course_name, l.full_name AS learner_name, fb.rating, fb.comment, fb.created_at FROM course_feedback fb JOIN courses c ON c.id = fb.course_id JOIN users l ON l.id = fb.learner_id`
	var args []interface{}
	if courseID != "" {
		args = append(args, courseID)
		query += " WHERE fb.course_id = $1"
	}
	query += " ORDER BY fb.created_at DESC"

	items := make([]models.Feedback, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}
