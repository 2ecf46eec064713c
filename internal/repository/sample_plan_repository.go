package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/learner-hub-api/internal/models"
	"github.com/noah-isme/learner-hub-api/pkg/database"
)

const planDetailColumns = "id, plan_id, learner_id, sample_type, planned_date, completed_date, assessment_methods, assessment_processes, feedback, iqa_conclusion, assessor_decision_correct, status, created_at, updated_at"

// SamplePlanRepository persists sample plans, their sampled learners and unit selections.
type SamplePlanRepository struct {
	db *sqlx.DB
}

// NewSamplePlanRepository instantiates a sample plan repository.
func NewSamplePlanRepository(db *sqlx.DB) *SamplePlanRepository {
	return &SamplePlanRepository{db: db}
}

// List returns plans filtered by course and IQA, newest first.
func (r *SamplePlanRepository) List(ctx context.Context, filter models.SamplePlanFilter) ([]models.SamplePlan, error) {
	query := `SELECT sp.id, sp.course_id, c.name AS course_name, sp.iqa_id, u.full_name AS iqa_name, sp.created_at FROM sample_plans sp JOIN courses c ON c.id = sp.course_id JOIN users u ON u.id = sp.iqa_id WHERE 1=1`
	var args []interface{}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		query += fmt.Sprintf(" AND sp.course_id = $%d", len(args))
	}
	if filter.IQAID != "" {
		args = append(args, filter.IQAID)
		query += fmt.Sprintf(" AND sp.iqa_id = $%d", len(args))
	}
	query += " ORDER BY sp.created_at DESC"

	plans := make([]models.SamplePlan, 0)
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list sample plans: %w", err)
	}
	return plans, nil
}

// FindByID loads a plan by identifier.
func (r *SamplePlanRepository) FindByID(ctx context.Context, id string) (*models.SamplePlan, error) {
	const query = `SELECT sp.id, sp.course_id, c.name AS course_name, sp.iqa_id, u.full_name AS iqa_name, sp.created_at FROM sample_plans sp JOIN courses c ON c.id = sp.course_id JOIN users u ON u.id = sp.iqa_id WHERE sp.id = $1`
	var plan models.SamplePlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create inserts a plan assigning an IQA to a course.
func (r *SamplePlanRepository) Create(ctx context.Context, plan *models.SamplePlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sample_plans (id, course_id, iqa_id, created_at) VALUES (:id, :course_id, :iqa_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create sample plan: %w", err)
	}
	return nil
}

// Delete removes a plan together with its details. It returns stored document paths for cleanup.
func (r *SamplePlanRepository) Delete(ctx context.Context, id string) ([]string, error) {
	var paths []string
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &paths, `SELECT d.file_path FROM sample_documents d JOIN sample_plan_details pd ON pd.id = d.plan_detail_id WHERE pd.plan_id = $1`, id); err != nil {
			return fmt.Errorf("collect plan documents: %w", err)
		}
		for _, table := range []string{"sample_documents", "sample_actions", "sample_questions", "sample_allocated_forms"} {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE plan_detail_id IN (SELECT id FROM sample_plan_details WHERE plan_id = $1)", table), id); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sample_plan_detail_units WHERE detail_id IN (SELECT id FROM sample_plan_details WHERE plan_id = $1)`, id); err != nil {
			return fmt.Errorf("delete sampled units: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sample_plan_details WHERE plan_id = $1`, id); err != nil {
			return fmt.Errorf("delete plan details: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sample_plans WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete sample plan: %w", err)
		}
		return requireAffected(res)
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// ListCandidates returns learners enrolled on the course with their assessor and risk level.
func (r *SamplePlanRepository) ListCandidates(ctx context.Context, courseID string) ([]models.LearnerCandidate, error) {
	const query = `SELECT e.learner_id, l.full_name AS learner_name, COALESCE(e.assessor_id, '') AS assessor_id, COALESCE(a.full_name, '') AS assessor_name, e.risk_level FROM course_enrolments e JOIN users l ON l.id = e.learner_id LEFT JOIN users a ON a.id = e.assessor_id WHERE e.course_id = $1 ORDER BY l.full_name`
	candidates := make([]models.LearnerCandidate, 0)
	if err := r.db.SelectContext(ctx, &candidates, query, courseID); err != nil {
		return nil, fmt.Errorf("list learner candidates: %w", err)
	}
	return candidates, nil
}

// ListCourseUnits returns the units of a course in code order.
func (r *SamplePlanRepository) ListCourseUnits(ctx context.Context, courseID string) ([]models.CourseUnit, error) {
	const query = `SELECT course_id, unit_code, unit_name FROM course_units WHERE course_id = $1 ORDER BY unit_code`
	units := make([]models.CourseUnit, 0)
	if err := r.db.SelectContext(ctx, &units, query, courseID); err != nil {
		return nil, fmt.Errorf("list course units: %w", err)
	}
	return units, nil
}

// ListDetails returns the sampled learners of a plan.
func (r *SamplePlanRepository) ListDetails(ctx context.Context, planID string) ([]models.PlanDetail, error) {
	query := "SELECT " + planDetailColumns + " FROM sample_plan_details WHERE plan_id = $1 ORDER BY created_at"
	details := make([]models.PlanDetail, 0)
	if err := r.db.SelectContext(ctx, &details, query, planID); err != nil {
		return nil, fmt.Errorf("list plan details: %w", err)
	}
	return details, nil
}

// ListSampledUnits returns the selected units of every detail in a plan.
func (r *SamplePlanRepository) ListSampledUnits(ctx context.Context, planID string) ([]models.SampledUnit, error) {
	const query = `SELECT su.detail_id, su.unit_code FROM sample_plan_detail_units su JOIN sample_plan_details d ON d.id = su.detail_id WHERE d.plan_id = $1`
	units := make([]models.SampledUnit, 0)
	if err := r.db.SelectContext(ctx, &units, query, planID); err != nil {
		return nil, fmt.Errorf("list sampled units: %w", err)
	}
	return units, nil
}

// ExistingLearners returns which of learnerIDs are already sampled in the plan.
func (r *SamplePlanRepository) ExistingLearners(ctx context.Context, planID string, learnerIDs []string) ([]string, error) {
	const query = `SELECT learner_id FROM sample_plan_details WHERE plan_id = $1 AND learner_id = ANY($2)`
	existing := make([]string, 0)
	if err := r.db.SelectContext(ctx, &existing, query, planID, pq.Array(learnerIDs)); err != nil {
		return nil, fmt.Errorf("check sampled learners: %w", err)
	}
	return existing, nil
}

// ApplySampledLearners writes every learner of app with their units in one transaction.
func (r *SamplePlanRepository) ApplySampledLearners(ctx context.Context, app models.SampleApplication) ([]models.PlanDetail, error) {
	methods := make(pq.StringArray, len(app.AssessmentMethods))
	for i, m := range app.AssessmentMethods {
		methods[i] = string(m)
	}
	now := time.Now().UTC()
	details := make([]models.PlanDetail, 0, len(app.Learners))

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insertDetail = `INSERT INTO sample_plan_details (id, plan_id, learner_id, sample_type, planned_date, completed_date, assessment_methods, assessment_processes, feedback, iqa_conclusion, assessor_decision_correct, status, created_at, updated_at) VALUES (:id, :plan_id, :learner_id, :sample_type, :planned_date, :completed_date, :assessment_methods, :assessment_processes, :feedback, :iqa_conclusion, :assessor_decision_correct, :status, :created_at, :updated_at)`
		for _, learner := range app.Learners {
			detail := models.PlanDetail{
				ID:                uuid.NewString(),
				PlanID:            app.PlanID,
				LearnerID:         learner.LearnerID,
				SampleType:        app.SampleType,
				PlannedDate:       learner.PlannedDate,
				AssessmentMethods: methods,
				IQAConclusion:     pq.StringArray{},
				Status:            models.SampleStatusPlanned,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if _, err := tx.NamedExecContext(ctx, insertDetail, &detail); err != nil {
				return fmt.Errorf("insert plan detail for %s: %w", learner.LearnerID, err)
			}
			for _, code := range learner.UnitCodes {
				if _, err := tx.ExecContext(ctx, `INSERT INTO sample_plan_detail_units (detail_id, unit_code) VALUES ($1, $2)`, detail.ID, code); err != nil {
					return fmt.Errorf("insert sampled unit %s: %w", code, err)
				}
			}
			details = append(details, detail)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// FindDetail loads a plan detail.
func (r *SamplePlanRepository) FindDetail(ctx context.Context, id string) (*models.PlanDetail, error) {
	query := "SELECT " + planDetailColumns + " FROM sample_plan_details WHERE id = $1"
	var detail models.PlanDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateDetail writes only the columns set in patch and returns the stored row.
func (r *SamplePlanRepository) UpdateDetail(ctx context.Context, id string, patch models.PlanDetailPatch) (*models.PlanDetail, error) {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.SampleType != nil {
		add("sample_type", *patch.SampleType)
	}
	if patch.PlannedDate != nil {
		add("planned_date", *patch.PlannedDate)
	}
	if patch.CompletedDate != nil {
		add("completed_date", *patch.CompletedDate)
	}
	if patch.AssessmentMethods != nil {
		add("assessment_methods", pq.StringArray(*patch.AssessmentMethods))
	}
	if patch.AssessmentProcesses != nil {
		add("assessment_processes", *patch.AssessmentProcesses)
	}
	if patch.Feedback != nil {
		add("feedback", *patch.Feedback)
	}
	if patch.IQAConclusion != nil {
		add("iqa_conclusion", pq.StringArray(*patch.IQAConclusion))
	}
	if patch.AssessorDecisionCorrect != nil {
		add("assessor_decision_correct", *patch.AssessorDecisionCorrect)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if len(sets) == 0 {
		return r.FindDetail(ctx, id)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE sample_plan_details SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), planDetailColumns)
	var detail models.PlanDetail
	if err := r.db.GetContext(ctx, &detail, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update plan detail: %w", err)
	}
	return &detail, nil
}

// DeleteDetail removes a sampled learner and all of its sub-resources. It returns stored document paths.
func (r *SamplePlanRepository) DeleteDetail(ctx context.Context, id string) ([]string, error) {
	var paths []string
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &paths, `SELECT file_path FROM sample_documents WHERE plan_detail_id = $1`, id); err != nil {
			return fmt.Errorf("collect detail documents: %w", err)
		}
		for _, table := range []string{"sample_documents", "sample_actions", "sample_questions", "sample_allocated_forms"} {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE plan_detail_id = $1", table), id); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sample_plan_detail_units WHERE detail_id = $1`, id); err != nil {
			return fmt.Errorf("delete sampled units: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sample_plan_details WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete plan detail: %w", err)
		}
		return requireAffected(res)
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// requireAffected maps a zero-row write to sql.ErrNoRows so services can answer 404.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
