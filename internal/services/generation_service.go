package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"infographic-service/internal/config"
	"infographic-service/internal/metrics"
	"infographic-service/internal/models"
	"infographic-service/internal/store"
)

// Progress milestones written by the background job. Progress only moves
// forward: each milestone is larger than the previous one.
const (
	progressStarted   = 10
	progressPrompted  = 30
	progressGenerated = 80
	progressDone      = 100
)

// GenerationService drives a task from submission to its terminal state
type GenerationService struct {
	store store.TaskStore
	ai    Generator
	cfg   config.GenerationConfig
}

// NewGenerationService creates a generation orchestrator. The store and the
// generator are injected so deployments (and tests) can swap them.
func NewGenerationService(taskStore store.TaskStore, ai Generator, cfg config.GenerationConfig) *GenerationService {
	return &GenerationService{
		store: taskStore,
		ai:    ai,
		cfg:   cfg,
	}
}

// Start records a new pending task and returns it immediately; the AI call
// runs in a background job that owns all further writes to the task.
//
// If an identical submission already completed, Start returns a fresh task
// that is already completed with the cached result, so the caller can respond
// synchronously without a second generation.
func (s *GenerationService) Start(ctx context.Context, content string, mode models.Mode, size models.Size) (*models.GenerationTask, error) {
	fingerprint := models.TaskFingerprint(content, mode, size)
	now := time.Now()

	if cached, err := s.store.FindCompletedByFingerprint(ctx, fingerprint); err == nil {
		task := &models.GenerationTask{
			ID:          uuid.NewString(),
			Status:      models.TaskStatusCompleted,
			Progress:    progressDone,
			Mode:        mode,
			Size:        size,
			Fingerprint: fingerprint,
			Result:      cached.Result,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.Create(ctx, task); err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		log.Printf("Task %s served from cached result of task %s", task.ID, cached.ID)
		metrics.RecordTaskStarted()
		metrics.RecordTaskCompleted(0)
		return task, nil
	}

	task := &models.GenerationTask{
		ID:          uuid.NewString(),
		Status:      models.TaskStatusPending,
		Progress:    0,
		Mode:        mode,
		Size:        size,
		Fingerprint: fingerprint,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	metrics.RecordTaskStarted()

	go s.run(task.ID, content, mode, size)

	return task, nil
}

// run is the background unit of work for one task. Nothing may escape it:
// any error or panic ends in a terminal failed record, never in a task stuck
// at processing.
func (s *GenerationService) run(taskID, content string, mode models.Mode, size models.Size) {
	start := time.Now()

	// The client may stop polling long before we finish; the job always runs
	// to a terminal state so a later status read observes the true outcome.
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: generation job for task %s panicked: %v", taskID, r)
			s.finishFailed(ctx, taskID, fmt.Errorf("internal error during generation: %v", r))
			metrics.RecordTaskFailed(time.Since(start))
		}
	}()

	s.setProgress(ctx, taskID, progressStarted)

	prompt := BuildPrompt(content, mode, size)
	s.setProgress(ctx, taskID, progressPrompted)

	html, err := WithRetry(func() (string, error) {
		return s.ai.GenerateInfographic(ctx, prompt)
	}, s.cfg.MaxRetries, s.cfg.RetryDelay)
	if err != nil {
		s.finishFailed(ctx, taskID, err)
		metrics.RecordTaskFailed(time.Since(start))
		return
	}

	s.setProgress(ctx, taskID, progressGenerated)

	// Post-processing pass on the returned document
	html = StripCodeFences(html)

	s.finishCompleted(ctx, taskID, html)
	metrics.RecordTaskCompleted(time.Since(start))
	log.Printf("Task %s completed in %s", taskID, time.Since(start).Round(time.Millisecond))
}

// setProgress advances a milestone. A failed milestone write is logged and
// skipped: losing an intermediate progress value is harmless, only terminal
// writes matter.
func (s *GenerationService) setProgress(ctx context.Context, taskID string, progress int) {
	err := s.store.Update(ctx, taskID, store.UpdateTask{
		Status:   store.StatusPtr(models.TaskStatusProcessing),
		Progress: store.IntPtr(progress),
	})
	if err != nil {
		log.Printf("WARNING: failed to update progress for task %s: %v", taskID, err)
	}
}

func (s *GenerationService) finishCompleted(ctx context.Context, taskID, html string) {
	err := s.store.Update(ctx, taskID, store.UpdateTask{
		Status:   store.StatusPtr(models.TaskStatusCompleted),
		Progress: store.IntPtr(progressDone),
		Result:   store.StringPtr(html),
	})
	if err != nil {
		log.Printf("ERROR: failed to store result for task %s: %v", taskID, err)
	}
}

func (s *GenerationService) finishFailed(ctx context.Context, taskID string, cause error) {
	log.Printf("ERROR: generation failed for task %s: %v", taskID, cause)
	err := s.store.Update(ctx, taskID, store.UpdateTask{
		Status: store.StatusPtr(models.TaskStatusFailed),
		Error:  store.StringPtr(cause.Error()),
	})
	if err != nil {
		log.Printf("ERROR: failed to store failure for task %s: %v", taskID, err)
	}
}
