package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/internal/models"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	"github.com/noah-isme/learner-hub-api/pkg/jobs"
	"github.com/noah-isme/learner-hub-api/pkg/storage"
)

type sampleDetailRepoStub struct {
	seq       int
	actions   map[string]*models.SampleAction
	documents map[string]*models.SampleDocument
	questions map[string]*models.SampleQuestion
	forms     map[string]*models.SampleAllocatedForm
	failDoc   bool
}

func newSampleDetailRepoStub() *sampleDetailRepoStub {
	return &sampleDetailRepoStub{
		actions:   map[string]*models.SampleAction{},
		documents: map[string]*models.SampleDocument{},
		questions: map[string]*models.SampleQuestion{},
		forms:     map[string]*models.SampleAllocatedForm{},
	}
}

func (r *sampleDetailRepoStub) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *sampleDetailRepoStub) ListActions(ctx context.Context, detailID string) ([]models.SampleAction, error) {
	out := []models.SampleAction{}
	for _, a := range r.actions {
		if a.PlanDetailID == detailID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *sampleDetailRepoStub) CreateAction(ctx context.Context, action *models.SampleAction) error {
	action.ID = r.nextID("action")
	copy := *action
	r.actions[action.ID] = &copy
	return nil
}

func (r *sampleDetailRepoStub) FindAction(ctx context.Context, id string) (*models.SampleAction, error) {
	a, ok := r.actions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *a
	return &copy, nil
}

func (r *sampleDetailRepoStub) UpdateAction(ctx context.Context, action *models.SampleAction) error {
	copy := *action
	r.actions[action.ID] = &copy
	return nil
}

func (r *sampleDetailRepoStub) DeleteAction(ctx context.Context, id string) error {
	if _, ok := r.actions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.actions, id)
	return nil
}

func (r *sampleDetailRepoStub) ListDocuments(ctx context.Context, detailID string) ([]models.SampleDocument, error) {
	out := []models.SampleDocument{}
	for _, d := range r.documents {
		if d.PlanDetailID == detailID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *sampleDetailRepoStub) CreateDocument(ctx context.Context, doc *models.SampleDocument) error {
	if r.failDoc {
		return fmt.Errorf("insert sample document: boom")
	}
	doc.ID = r.nextID("doc")
	copy := *doc
	r.documents[doc.ID] = &copy
	return nil
}

func (r *sampleDetailRepoStub) FindDocument(ctx context.Context, id string) (*models.SampleDocument, error) {
	d, ok := r.documents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *d
	return &copy, nil
}

func (r *sampleDetailRepoStub) UpdateDocument(ctx context.Context, doc *models.SampleDocument) error {
	copy := *doc
	r.documents[doc.ID] = &copy
	return nil
}

func (r *sampleDetailRepoStub) DeleteDocument(ctx context.Context, id string) error {
	delete(r.documents, id)
	return nil
}

func (r *sampleDetailRepoStub) ListQuestions(ctx context.Context, detailID string) ([]models.SampleQuestion, error) {
	out := []models.SampleQuestion{}
	for _, q := range r.questions {
		if q.PlanDetailID == detailID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *sampleDetailRepoStub) CreateQuestion(ctx context.Context, q *models.SampleQuestion) error {
	q.ID = r.nextID("question")
	copy := *q
	r.questions[q.ID] = &copy
	return nil
}

func (r *sampleDetailRepoStub) FindQuestion(ctx context.Context, id string) (*models.SampleQuestion, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *q
	return &copy, nil
}

func (r *sampleDetailRepoStub) UpdateQuestion(ctx context.Context, q *models.SampleQuestion) error {
	copy := *q
	r.questions[q.ID] = &copy
	return nil
}

func (r *sampleDetailRepoStub) DeleteQuestion(ctx context.Context, id string) error {
	delete(r.questions, id)
	return nil
}

func (r *sampleDetailRepoStub) ListForms(ctx context.Context, detailID string) ([]models.SampleAllocatedForm, error) {
	out := []models.SampleAllocatedForm{}
	for _, f := range r.forms {
		if f.PlanDetailID == detailID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *sampleDetailRepoStub) CreateForm(ctx context.Context, form *models.SampleAllocatedForm) error {
	form.ID = r.nextID("form")
	copy := *form
	r.forms[form.ID] = &copy
	return nil
}

func (r *sampleDetailRepoStub) FindForm(ctx context.Context, id string) (*models.SampleAllocatedForm, error) {
	f, ok := r.forms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *f
	return &copy, nil
}

func (r *sampleDetailRepoStub) UpdateForm(ctx context.Context, form *models.SampleAllocatedForm) error {
	copy := *form
	r.forms[form.ID] = &copy
	return nil
}

func (r *sampleDetailRepoStub) DeleteForm(ctx context.Context, id string) error {
	delete(r.forms, id)
	return nil
}

type detailFinderStub map[string]bool

func (d detailFinderStub) FindDetail(ctx context.Context, id string) (*models.PlanDetail, error) {
	if !d[id] {
		return nil, sql.ErrNoRows
	}
	return &models.PlanDetail{ID: id}, nil
}

type sampleDetailFixture struct {
	svc   *SampleDetailService
	repo  *sampleDetailRepoStub
	store *storage.LocalStorage
	queue *queueRecorder
}

func newSampleDetailFixture(t *testing.T) sampleDetailFixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := newSampleDetailRepoStub()
	queue := &queueRecorder{}
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewSampleDetailService(repo, detailFinderStub{"d1": true}, store, signer, nil, queue, nil, nil, SampleDetailConfig{APIPrefix: "/api/v1"})
	return sampleDetailFixture{svc: svc, repo: repo, store: store, queue: queue}
}

func pdfUpload(name string) storage.Upload {
	body := []byte("%PDF-1.4\n% evidence\n")
	return storage.Upload{Filename: name, Size: int64(len(body)), MimeType: "application/pdf", Content: bytes.NewReader(body)}
}

func TestSampleActionLifecycle(t *testing.T) {
	f := newSampleDetailFixture(t)
	ctx := context.Background()

	action, err := f.svc.CreateAction(ctx, "d1", dto.SampleActionRequest{ActionRequired: "Add witness statement", TargetDate: strPtr("2024-06-01")}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ActionPending, action.Status)
	assert.Equal(t, "admin-1", action.CreatedBy)

	updated, err := f.svc.UpdateAction(ctx, action.ID, dto.SampleActionRequest{ActionRequired: "Add witness statement", Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, models.ActionClosed, updated.Status)
	assert.Nil(t, updated.TargetDate)

	reopened, err := f.svc.UpdateAction(ctx, action.ID, dto.SampleActionRequest{ActionRequired: "Add witness statement", Status: "In Progress"})
	require.NoError(t, err)
	assert.Equal(t, models.ActionInProgress, reopened.Status)

	_, err = f.svc.UpdateAction(ctx, action.ID, dto.SampleActionRequest{ActionRequired: "x", Status: "Archived"})
	requireValidation(t, err)

	require.NoError(t, f.svc.DeleteAction(ctx, action.ID))
	err = f.svc.DeleteAction(ctx, action.ID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSampleSubResourcesRequireDetail(t *testing.T) {
	f := newSampleDetailFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListActions(ctx, "missing")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	_, err = f.svc.CreateQuestion(ctx, "missing", dto.SampleQuestionRequest{Question: "Q", Answer: "Yes"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSampleQuestionAnswerValidation(t *testing.T) {
	f := newSampleDetailFixture(t)

	q, err := f.svc.CreateQuestion(context.Background(), "d1", dto.SampleQuestionRequest{Question: "Evidence authentic?", Answer: "n/a"})
	require.NoError(t, err)
	assert.Equal(t, models.AnswerNA, q.Answer)

	_, err = f.svc.CreateQuestion(context.Background(), "d1", dto.SampleQuestionRequest{Question: "Evidence authentic?", Answer: "Maybe"})
	requireValidation(t, err)
}

func TestAllocatedFormCompletionStampsOnce(t *testing.T) {
	f := newSampleDetailFixture(t)
	stamp := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return stamp }
	ctx := context.Background()

	form, err := f.svc.AllocateForm(ctx, "d1", dto.SampleFormRequest{FormID: "f1", FormName: "Review"})
	require.NoError(t, err)
	assert.Nil(t, form.CompletedAt)

	done, err := f.svc.UpdateForm(ctx, form.ID, dto.SampleFormRequest{FormID: "f1", FormName: "Review", Completed: true})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, stamp, *done.CompletedAt)

	f.svc.now = func() time.Time { return stamp.Add(time.Hour) }
	again, err := f.svc.UpdateForm(ctx, form.ID, dto.SampleFormRequest{FormID: "f1", FormName: "Review v2", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, stamp, *again.CompletedAt)
}

func TestSampleDocumentUploadAndSignedDownload(t *testing.T) {
	f := newSampleDetailFixture(t)
	ctx := context.Background()

	doc, err := f.svc.UploadDocument(ctx, "d1", dto.SampleDocumentMeta{Description: "Observation record"}, pdfUpload("Observation Record.pdf"), adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.True(t, strings.HasPrefix(doc.FilePath, "plan-details/d1/"))
	require.True(t, strings.HasPrefix(doc.DownloadURL, "/api/v1/sample-plan/documents/download/"))

	docs, err := f.svc.ListDocuments(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEmpty(t, docs[0].DownloadURL)

	token := strings.TrimPrefix(doc.DownloadURL, "/api/v1/sample-plan/documents/download/")
	download, err := f.svc.OpenDocument(ctx, token)
	require.NoError(t, err)
	defer download.File.Close() //nolint:errcheck
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
	assert.Equal(t, "Observation Record.pdf", download.Filename)

	_, err = f.svc.OpenDocument(ctx, token+"x")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErr.Code)
}

func TestSampleDocumentUploadRejectsDisallowedType(t *testing.T) {
	f := newSampleDetailFixture(t)
	body := []byte("MZ\x90\x00binary")
	upload := storage.Upload{Filename: "tool.exe", Size: int64(len(body)), Content: bytes.NewReader(body)}

	_, err := f.svc.UploadDocument(context.Background(), "d1", dto.SampleDocumentMeta{}, upload, adminClaims())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnsupportedMedia.Code, appErr.Code)
}

func TestSampleDocumentUploadRemovesFileWhenMetadataFails(t *testing.T) {
	f := newSampleDetailFixture(t)
	f.repo.failDoc = true

	_, err := f.svc.UploadDocument(context.Background(), "d1", dto.SampleDocumentMeta{}, pdfUpload("a.pdf"), adminClaims())
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(f.store.Root(), "plan-details", "d1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSampleDocumentDeleteQueuesCleanup(t *testing.T) {
	f := newSampleDetailFixture(t)
	ctx := context.Background()
	doc, err := f.svc.UploadDocument(ctx, "d1", dto.SampleDocumentMeta{}, pdfUpload("a.pdf"), adminClaims())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteDocument(ctx, doc.ID))
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, []string{doc.FilePath}, f.queue.jobs[0].Payload)

	handler := StorageDeleteHandler(f.store, nil)
	require.NoError(t, handler(ctx, f.queue.jobs[0]))
	_, err = os.Stat(filepath.Join(f.store.Root(), doc.FilePath))
	assert.True(t, os.IsNotExist(err))

	err = handler(ctx, jobs.Job{Type: JobStorageDelete, Payload: "not-a-list"})
	assert.True(t, jobs.IsPermanent(err))
}
