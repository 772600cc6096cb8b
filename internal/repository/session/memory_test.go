package session_test

import (
	"context"
	"testing"

	sessionrepo "github.com/captionrelay/captionrelay/internal/repository/session"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoRecentBatches(t *testing.T) {
	ctx := context.Background()
	repo := sessionrepo.NewMemoryBatchRepo()
	id := uuid.New()

	for i := 0; i < 5; i++ {
		err := repo.SaveBatch(ctx, id, types.ConfirmedBatch{SequenceIndex: i})
		require.NoError(t, err)
	}

	got, err := repo.RecentBatches(ctx, id, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].SequenceIndex)
	assert.Equal(t, 4, got[2].SequenceIndex)

	all, err := repo.RecentBatches(ctx, id, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryRepoIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	repo := sessionrepo.NewMemoryBatchRepo()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, repo.SaveBatch(ctx, a, types.ConfirmedBatch{TextEN: "for a"}))

	got, err := repo.RecentBatches(ctx, b, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryRepoLiveBuffer(t *testing.T) {
	ctx := context.Background()
	repo := sessionrepo.NewMemoryBatchRepo()
	id := uuid.New()

	assert.NoError(t, repo.SaveLiveBuffer(ctx, id, "half a sentence"))
	assert.NoError(t, repo.SaveLiveBuffer(ctx, id, ""))
}
