package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infographic-service/internal/config"
	"infographic-service/internal/models"
	"infographic-service/internal/store"
)

// stubGenerator scripts the completion API for orchestrator tests
type stubGenerator struct {
	calls  atomic.Int32
	result string
	err    error
	// failures before succeeding; negative means always fail
	failFirst int32
	panics    bool
}

func (g *stubGenerator) GenerateInfographic(ctx context.Context, prompt string) (string, error) {
	n := g.calls.Add(1)
	if g.panics {
		panic("generator exploded")
	}
	if g.failFirst < 0 || n <= g.failFirst {
		return "", g.err
	}
	return g.result, nil
}

func testGenerationConfig() config.GenerationConfig {
	return config.GenerationConfig{
		MaxContentLength: 5000,
		MaxRetries:       2,
		RetryDelay:       time.Millisecond,
	}
}

func waitForTerminal(t *testing.T, s store.TaskStore, taskID string) *models.GenerationTask {
	t.Helper()
	var task *models.GenerationTask
	require.Eventually(t, func() bool {
		got, err := s.Get(context.Background(), taskID)
		if err != nil {
			return false
		}
		task = got
		return task.Terminal()
	}, 5*time.Second, 5*time.Millisecond, "task %s never reached a terminal state", taskID)
	return task
}

func TestStartReturnsPendingTaskImmediately(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{result: "<html>done</html>"}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	task, err := svc.Start(context.Background(), "hello", models.ModeSummary, models.SizeMobile)
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.Equal(t, models.ModeSummary, task.Mode)
	assert.Equal(t, models.SizeMobile, task.Size)

	// The record is readable right away
	got, err := taskStore.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, got.Status)

	waitForTerminal(t, taskStore, task.ID)
}

func TestBackgroundJobCompletesTask(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{result: "<html>infographic</html>"}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	task, err := svc.Start(context.Background(), "hello", models.ModeSummary, models.SizeMobile)
	require.NoError(t, err)

	final := waitForTerminal(t, taskStore, task.ID)
	assert.Equal(t, models.TaskStatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, "<html>infographic</html>", final.Result)
	assert.Empty(t, final.Error)
}

func TestBackgroundJobStripsCodeFences(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{result: "```html\n<html>fenced</html>\n```"}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	task, err := svc.Start(context.Background(), "hello", models.ModeFull, models.Size16x9)
	require.NoError(t, err)

	final := waitForTerminal(t, taskStore, task.ID)
	assert.Equal(t, "<html>fenced</html>", final.Result)
}

func TestBackgroundJobRetriesTransientFailures(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{
		result:    "<html>eventually</html>",
		err:       errors.New("rate limited"),
		failFirst: 2,
	}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	task, err := svc.Start(context.Background(), "hello", models.ModeFull, models.Size16x9)
	require.NoError(t, err)

	final := waitForTerminal(t, taskStore, task.ID)
	assert.Equal(t, models.TaskStatusCompleted, final.Status)
	assert.Equal(t, int32(3), gen.calls.Load())
}

func TestBackgroundJobFailsAfterAllRetries(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{err: errors.New("model unavailable"), failFirst: -1}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	task, err := svc.Start(context.Background(), "hello", models.ModeFull, models.Size16x9)
	require.NoError(t, err)

	final := waitForTerminal(t, taskStore, task.ID)
	assert.Equal(t, models.TaskStatusFailed, final.Status)
	assert.Contains(t, final.Error, "model unavailable")
	assert.Empty(t, final.Result)
	// initial attempt + 2 retries
	assert.Equal(t, int32(3), gen.calls.Load())
}

func TestBackgroundJobSurvivesPanic(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{panics: true}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	task, err := svc.Start(context.Background(), "hello", models.ModeFull, models.Size16x9)
	require.NoError(t, err)

	// A panic must never leave the task stuck in processing
	final := waitForTerminal(t, taskStore, task.ID)
	assert.Equal(t, models.TaskStatusFailed, final.Status)
	assert.Contains(t, final.Error, "internal error")
}

func TestProgressNeverDecreases(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{result: "<html>done</html>"}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	task, err := svc.Start(context.Background(), "hello", models.ModeFull, models.Size16x9)
	require.NoError(t, err)

	last := -1
	require.Eventually(t, func() bool {
		got, err := taskStore.Get(context.Background(), task.ID)
		if err != nil {
			return false
		}
		if got.Status == models.TaskStatusPending || got.Status == models.TaskStatusProcessing {
			require.GreaterOrEqual(t, got.Progress, last)
			last = got.Progress
		}
		return got.Terminal()
	}, 5*time.Second, time.Millisecond)
}

func TestIdenticalSubmissionReusesCachedResult(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{result: "<html>first</html>"}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	first, err := svc.Start(context.Background(), "same text", models.ModeFull, models.Size16x9)
	require.NoError(t, err)
	waitForTerminal(t, taskStore, first.ID)

	second, err := svc.Start(context.Background(), "same text", models.ModeFull, models.Size16x9)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "cached submissions still get a fresh task id")
	assert.Equal(t, models.TaskStatusCompleted, second.Status)
	assert.Equal(t, "<html>first</html>", second.Result)
	assert.Equal(t, int32(1), gen.calls.Load(), "no second generation for an identical submission")
}

func TestDifferentSizeDoesNotReuseCache(t *testing.T) {
	taskStore := store.NewMemoryTaskStore()
	gen := &stubGenerator{result: "<html>x</html>"}
	svc := NewGenerationService(taskStore, gen, testGenerationConfig())

	first, err := svc.Start(context.Background(), "same text", models.ModeFull, models.Size16x9)
	require.NoError(t, err)
	waitForTerminal(t, taskStore, first.ID)

	second, err := svc.Start(context.Background(), "same text", models.ModeFull, models.SizeA4Portrait)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, second.Status)
	waitForTerminal(t, taskStore, second.ID)
	assert.Equal(t, int32(2), gen.calls.Load())
}
