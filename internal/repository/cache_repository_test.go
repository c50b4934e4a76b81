package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "competency:", nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "overview", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "overview", map[string]int{"a": 1}, time.Minute))

	n, err := repo.DeleteByPattern(ctx, "overview:*")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "competency:overview", repo.key("overview"))
}
