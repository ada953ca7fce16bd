package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/domain/repositories"
)

func newRun(t *testing.T, sessionID, meetingID string, startedAt time.Time) *entities.PipelineRun {
	t.Helper()
	run := entities.NewPipelineRun(uuid.New(), sessionID, meetingID)
	run.StartedAt = startedAt
	return run
}

func exerciseRunRepository(t *testing.T, repo repositories.RunRepository) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	first := newRun(t, "sess-1", "m-1", base)
	second := newRun(t, "sess-1", "m-2", base.Add(time.Minute))
	other := newRun(t, "sess-2", "m-3", base.Add(2*time.Minute))

	for _, run := range []*entities.PipelineRun{first, second, other} {
		require.NoError(t, repo.Save(ctx, run))
	}

	// later transitions overwrite the stored snapshot
	require.NoError(t, first.MarkAsAnalyzing())
	require.NoError(t, first.MarkAsAnalysisFailed("bad output"))
	require.NoError(t, repo.Save(ctx, first))

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RunStateAnalysisFailed, got.State)
	assert.Equal(t, entities.StageAnalysis, got.FailedStage)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "bad output", *got.LastError)

	runs, err := repo.ListBySession(ctx, "sess-1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	limited, err := repo.ListBySession(ctx, "sess-1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)

	none, err := repo.ListBySession(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, entities.ErrRunNotFound)
}

func TestRedisRunRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseRunRepository(t, NewRedisRunRepository(client, time.Hour))
}

func TestRedisRunRepository_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewRedisRunRepository(client, time.Minute)
	ctx := context.Background()
	run := newRun(t, "sess-1", "m-1", time.Now())
	require.NoError(t, repo.Save(ctx, run))

	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, run.ID)
	assert.ErrorIs(t, err, entities.ErrRunNotFound)
}

func TestMemoryRunRepository(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	exerciseRunRepository(t, NewMemoryRunRepository(store, time.Hour))
}

func TestMemoryRunRepository_Expiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	repo := NewMemoryRunRepository(store, 10*time.Millisecond)
	ctx := context.Background()
	run := newRun(t, "sess-1", "m-1", time.Now())
	require.NoError(t, repo.Save(ctx, run))

	time.Sleep(30 * time.Millisecond)

	_, err := repo.Get(ctx, run.ID)
	assert.ErrorIs(t, err, entities.ErrRunNotFound)

	runs, err := repo.ListBySession(ctx, "sess-1", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Set("k", "v", time.Minute)
	v, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	store.Delete("k")
	_, ok = store.Get("k")
	assert.False(t, ok)
}
