package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsAlwaysMiss(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "session-types", "lh:session-types:abc", []string{"x"}, time.Minute))

	var out []string
	err := repo.Get(ctx, "lh:session-types:abc", &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	dropped, err := repo.DeleteTag(ctx, "session-types")
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.NoError(t, repo.Close())
}

func TestTagIndexKey(t *testing.T) {
	assert.Equal(t, "lh:tagidx:plan-learners", TagIndexKey("plan-learners"))
}
