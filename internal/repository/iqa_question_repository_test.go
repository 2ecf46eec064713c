package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learner-hub-api/internal/models"
)

func TestIQAQuestionRepositoryListFiltersTypeAndActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIQAQuestionRepository(db)

	qt := models.QuestionLearnerInterview
	mock.ExpectQuery(regexp.QuoteMeta("FROM iqa_questions WHERE 1=1 AND question_type = $1 AND is_active = TRUE ORDER BY question_type, created_at")).
		WithArgs(qt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question", "question_type", "is_active", "created_at", "updated_at"}).
			AddRow("q1", "Did the learner understand feedback?", "Learner Interview", true, time.Now(), time.Now()))

	items, err := repo.List(context.Background(), models.IQAQuestionFilter{Type: &qt, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.QuestionLearnerInterview, items[0].QuestionType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIQAQuestionRepositoryCreateManyIsAtomic(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIQAQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO iqa_questions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO iqa_questions").WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := repo.CreateMany(context.Background(), []*models.IQAQuestion{
		{Question: "one", QuestionType: models.QuestionFinalCheck, IsActive: true},
		{Question: "two", QuestionType: models.QuestionFinalCheck, IsActive: true},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIQAQuestionRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIQAQuestionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM iqa_questions WHERE id = $1")).WithArgs("q9").WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Delete(context.Background(), "q9")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
