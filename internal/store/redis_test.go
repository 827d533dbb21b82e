package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infographic-service/internal/config"
	"infographic-service/internal/models"
)

func setupRedisStore(t *testing.T) (*RedisTaskStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := NewRedisTaskStore(config.RedisConfig{
		Addr: mr.Addr(),
		TTL:  time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestRedisStoreCreateAndGet(t *testing.T) {
	s, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newTask("t1")))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, got.Status)
	assert.Equal(t, 0, got.Progress)
}

func TestRedisStoreGetUnknownID(t *testing.T) {
	s, _ := setupRedisStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRedisStoreUpdateUnknownID(t *testing.T) {
	s, _ := setupRedisStore(t)

	err := s.Update(context.Background(), "nope", UpdateTask{Progress: IntPtr(10)})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRedisStorePartialUpdate(t *testing.T) {
	s, _ := setupRedisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newTask("t1")))

	err := s.Update(ctx, "t1", UpdateTask{
		Status:   StatusPtr(models.TaskStatusProcessing),
		Progress: IntPtr(80),
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusProcessing, got.Status)
	assert.Equal(t, 80, got.Progress)
	assert.Empty(t, got.Result)
}

func TestRedisStoreFingerprintIndex(t *testing.T) {
	s, _ := setupRedisStore(t)
	ctx := context.Background()

	task := newTask("t1")
	require.NoError(t, s.Create(ctx, task))

	// Only completed tasks are reachable through the fingerprint index
	_, err := s.FindCompletedByFingerprint(ctx, task.Fingerprint)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	require.NoError(t, s.Update(ctx, "t1", UpdateTask{
		Status:   StatusPtr(models.TaskStatusCompleted),
		Progress: IntPtr(100),
		Result:   StringPtr("<html>cached</html>"),
	}))

	found, err := s.FindCompletedByFingerprint(ctx, task.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, "t1", found.ID)
	assert.Equal(t, "<html>cached</html>", found.Result)
}

func TestRedisStoreRecordsExpire(t *testing.T) {
	s, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newTask("t1")))

	mr.FastForward(2 * time.Hour)

	_, err := s.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
