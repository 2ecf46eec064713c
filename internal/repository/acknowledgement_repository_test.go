package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learner-hub-api/internal/models"
)

func TestAcknowledgementRepositoryListNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcknowledgementRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM acknowledgements ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "severity", "file_name", "file_path", "mime_type", "created_by", "created_at", "updated_at"}).
			AddRow("a2", "Second", "Warning", nil, nil, nil, "admin", now, now).
			AddRow("a1", "First", "Info", "note.pdf", "acknowledgements/note.pdf", "application/pdf", "admin", now.Add(-time.Hour), now))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a2", items[0].ID)
	assert.Equal(t, models.SeverityWarning, items[0].Severity)
	assert.Nil(t, items[0].FileName)
	require.NotNil(t, items[1].FilePath)
	assert.Equal(t, "acknowledgements/note.pdf", *items[1].FilePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcknowledgementRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcknowledgementRepository(db)

	mock.ExpectExec("INSERT INTO acknowledgements").
		WithArgs(sqlmock.AnyArg(), "Hello", models.SeverityInfo, nil, nil, nil, "admin", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ack := &models.Acknowledgement{Message: "Hello", Severity: models.SeverityInfo, CreatedBy: "admin"}
	require.NoError(t, repo.Create(context.Background(), ack))
	assert.NotEmpty(t, ack.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcknowledgementRepositoryClear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcknowledgementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT file_path FROM acknowledgements WHERE file_path IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}).AddRow("acknowledgements/a.pdf"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM acknowledgements")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	paths, err := repo.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acknowledgements/a.pdf"}, paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}
