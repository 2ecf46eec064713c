package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learner-hub-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var detailRowColumns = []string{"id", "plan_id", "learner_id", "sample_type", "planned_date", "completed_date", "assessment_methods", "assessment_processes", "feedback", "iqa_conclusion", "assessor_decision_correct", "status", "created_at", "updated_at"}

func TestSamplePlanRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSamplePlanRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "course_name", "iqa_id", "iqa_name", "created_at"}).
		AddRow("p1", "c1", "Level 3 Diploma", "u1", "Iris Q", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND sp.course_id = $1 AND sp.iqa_id = $2 ORDER BY sp.created_at DESC")).
		WithArgs("c1", "u1").
		WillReturnRows(rows)

	plans, err := repo.List(context.Background(), models.SamplePlanFilter{CourseID: "c1", IQAID: "u1"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Level 3 Diploma", plans[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSamplePlanRepositoryListWithoutFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSamplePlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY sp.created_at DESC")).
		WithArgs().
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "course_name", "iqa_id", "iqa_name", "created_at"}))

	plans, err := repo.List(context.Background(), models.SamplePlanFilter{})
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSamplePlanRepositoryApplySampledLearnersCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSamplePlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sample_plan_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO sample_plan_detail_units").WithArgs(sqlmock.AnyArg(), "U1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO sample_plan_detail_units").WithArgs(sqlmock.AnyArg(), "U2").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO sample_plan_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO sample_plan_detail_units").WithArgs(sqlmock.AnyArg(), "U1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	details, err := repo.ApplySampledLearners(context.Background(), models.SampleApplication{
		PlanID:            "p1",
		SampleType:        models.SampleFormative,
		AssessmentMethods: []models.AssessmentMethod{models.MethodObservation},
		Learners: []models.SampledLearnerInput{
			{LearnerID: "l1", UnitCodes: []string{"U1", "U2"}},
			{LearnerID: "l2", UnitCodes: []string{"U1"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, models.SampleStatusPlanned, details[0].Status)
	assert.Equal(t, []string{"WO"}, []string(details[1].AssessmentMethods))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSamplePlanRepositoryApplySampledLearnersRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSamplePlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sample_plan_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO sample_plan_detail_units").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	details, err := repo.ApplySampledLearners(context.Background(), models.SampleApplication{
		PlanID:     "p1",
		SampleType: models.SampleFinal,
		Learners:   []models.SampledLearnerInput{{LearnerID: "l1", UnitCodes: []string{"BAD"}}},
	})
	require.Error(t, err)
	assert.Nil(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSamplePlanRepositoryUpdateDetailWritesOnlyPatchedColumns(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSamplePlanRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(detailRowColumns).
		AddRow("d1", "p1", "l1", "Formative", nil, nil, "{WO,QA}", "process", "x", "{}", "", "Planned", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE sample_plan_details SET feedback = $1, updated_at = $2 WHERE id = $3 RETURNING")).
		WithArgs("x", sqlmock.AnyArg(), "d1").
		WillReturnRows(rows)

	feedback := "x"
	detail, err := repo.UpdateDetail(context.Background(), "d1", models.PlanDetailPatch{Feedback: &feedback})
	require.NoError(t, err)
	assert.Equal(t, "x", detail.Feedback)
	assert.Equal(t, "process", detail.AssessmentProcesses)
	assert.Equal(t, []string{"WO", "QA"}, []string(detail.AssessmentMethods))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSamplePlanRepositoryDeleteDetailNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSamplePlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT file_path FROM sample_documents WHERE plan_detail_id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}))
	for _, table := range []string{"sample_documents", "sample_actions", "sample_questions", "sample_allocated_forms", "sample_plan_detail_units"} {
		mock.ExpectExec("DELETE FROM " + table).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sample_plan_details WHERE id = $1")).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.DeleteDetail(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSamplePlanRepositoryDeleteDetailReturnsDocumentPaths(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSamplePlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT file_path FROM sample_documents").
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}).AddRow("plan-details/d1/a.pdf"))
	for i := 0; i < 5; i++ {
		mock.ExpectExec("DELETE FROM").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sample_plan_details WHERE id = $1")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	paths, err := repo.DeleteDetail(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-details/d1/a.pdf"}, paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}
