package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learner-hub-api/internal/dto"
	"github.com/noah-isme/learner-hub-api/internal/models"
)

type sessionTypeRepoStub struct {
	items     []models.SessionType
	listCalls int
}

func newSessionTypeRepoStub() *sessionTypeRepoStub {
	return &sessionTypeRepoStub{items: []models.SessionType{
		{ID: "a", Name: "Workshop", Order: 1, IsActive: true},
		{ID: "b", Name: "Visit", Order: 2, IsActive: true},
		{ID: "c", Name: "Webinar", Order: 3, IsActive: true, IsOffTheJob: true},
	}}
}

func (r *sessionTypeRepoStub) List(ctx context.Context) ([]models.SessionType, error) {
	r.listCalls++
	out := append([]models.SessionType(nil), r.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *sessionTypeRepoStub) index(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *sessionTypeRepoStub) FindByID(ctx context.Context, id string) (*models.SessionType, error) {
	i := r.index(id)
	if i < 0 {
		return nil, sql.ErrNoRows
	}
	st := r.items[i]
	return &st, nil
}

func (r *sessionTypeRepoStub) Create(ctx context.Context, st *models.SessionType) error {
	st.ID = "new"
	st.Order = len(r.items) + 1
	r.items = append(r.items, *st)
	return nil
}

func (r *sessionTypeRepoStub) Update(ctx context.Context, st *models.SessionType) error {
	i := r.index(st.ID)
	if i < 0 {
		return sql.ErrNoRows
	}
	r.items[i] = *st
	return nil
}

func (r *sessionTypeRepoStub) Delete(ctx context.Context, id string) error {
	i := r.index(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *sessionTypeRepoStub) Reorder(ctx context.Context, id string, direction models.ReorderDirection) (bool, error) {
	items, _ := r.List(ctx)
	pos := -1
	for i := range items {
		if items[i].ID == id {
			pos = i
		}
	}
	if pos < 0 {
		return false, sql.ErrNoRows
	}
	target := pos - 1
	if direction == models.DirectionDown {
		target = pos + 1
	}
	if target < 0 || target >= len(items) {
		return false, nil
	}
	a, b := r.index(items[pos].ID), r.index(items[target].ID)
	r.items[a].Order, r.items[b].Order = r.items[b].Order, r.items[a].Order
	return true, nil
}

func sessionIDs(items []models.SessionType) []string {
	ids := make([]string, 0, len(items))
	for _, st := range items {
		ids = append(ids, st.ID)
	}
	return ids
}

func TestSessionTypeReorderSwapsNeighbours(t *testing.T) {
	repo := newSessionTypeRepoStub()
	audit := &auditRecorder{}
	svc := NewSessionTypeService(repo, nil, audit, nil, nil)

	items, err := svc.Reorder(context.Background(), dto.ReorderSessionTypeRequest{ID: "c", Direction: "up"}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, sessionIDs(items))
	assert.Equal(t, []string{models.AuditActionSessionTypeWrite}, audit.actions())
}

func TestSessionTypeReorderAtEdgeIsNoop(t *testing.T) {
	repo := newSessionTypeRepoStub()
	audit := &auditRecorder{}
	svc := NewSessionTypeService(repo, nil, audit, nil, nil)

	items, err := svc.Reorder(context.Background(), dto.ReorderSessionTypeRequest{ID: "a", Direction: "UP"}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, sessionIDs(items))
	assert.Empty(t, audit.actions())
}

func TestSessionTypeReorderRejectsUnknownDirection(t *testing.T) {
	svc := NewSessionTypeService(newSessionTypeRepoStub(), nil, nil, nil, nil)

	_, err := svc.Reorder(context.Background(), dto.ReorderSessionTypeRequest{ID: "a", Direction: "LEFT"}, adminClaims())
	requireValidation(t, err)
}

func TestSessionTypeListCachedUntilWrite(t *testing.T) {
	repo := newSessionTypeRepoStub()
	svc := NewSessionTypeService(repo, newTestCache(newMemoryCache()), nil, nil, nil)
	ctx := context.Background()

	_, hit, err := svc.List(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = svc.List(ctx)
	require.NoError(t, err)
	assert.True(t, hit)

	created, err := svc.Create(ctx, dto.SessionTypeRequest{Name: " Mentoring ", IsOffTheJob: true}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "Mentoring", created.Name)
	assert.Equal(t, 4, created.Order)
	assert.True(t, created.IsActive)

	items, hit, err := svc.List(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, items, 4)
	assert.Equal(t, 2, repo.listCalls)
}

func TestSessionTypeUpdateKeepsActiveWhenOmitted(t *testing.T) {
	repo := newSessionTypeRepoStub()
	repo.items[1].IsActive = false
	svc := NewSessionTypeService(repo, nil, nil, nil, nil)

	st, err := svc.Update(context.Background(), "b", dto.SessionTypeRequest{Name: "Site Visit"}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "Site Visit", st.Name)
	assert.False(t, st.IsActive)
}
