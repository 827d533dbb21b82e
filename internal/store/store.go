// Package store holds the generation task records. Two durable backends
// (MongoDB, Redis) and one ephemeral in-memory backend implement the same
// interface; the backend is selected by configuration at process start.
package store

import (
	"context"
	"errors"
	"log"
	"time"

	"infographic-service/internal/models"
)

// ErrTaskNotFound is returned when a task id was never created (or has been
// evicted by the backing store). Callers must treat it differently from a
// connectivity failure: not-found is final, connectivity issues are retryable.
var ErrTaskNotFound = errors.New("generation task not found")

// UpdateTask carries a partial update of a task record. Nil fields are left
// untouched.
type UpdateTask struct {
	Status   *models.TaskStatus
	Progress *int
	Result   *string
	Error    *string
}

// TaskStore persists generation task lifecycle records
type TaskStore interface {
	// Create inserts a new task record
	Create(ctx context.Context, task *models.GenerationTask) error

	// Get retrieves a task by id, returning ErrTaskNotFound for unknown ids
	Get(ctx context.Context, taskID string) (*models.GenerationTask, error)

	// Update applies a partial update to an existing task
	Update(ctx context.Context, taskID string, update UpdateTask) error

	// FindCompletedByFingerprint returns a completed task for the given
	// submission fingerprint, or ErrTaskNotFound when no such task exists
	FindCompletedByFingerprint(ctx context.Context, fingerprint string) (*models.GenerationTask, error)

	// Close releases any backend connections
	Close() error
}

const (
	storeRetryAttempts = 3
	storeRetryBaseWait = time.Second
)

// withLinearRetry runs op up to storeRetryAttempts times, waiting
// baseWait * attempt between attempts, to mask transient connectivity
// failures. ErrTaskNotFound is never retried: a missing record is a definite
// answer, not a transient fault.
func withLinearRetry(op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= storeRetryAttempts; attempt++ {
		err := op()
		if err == nil || errors.Is(err, ErrTaskNotFound) {
			return err
		}
		lastErr = err
		if attempt < storeRetryAttempts {
			wait := storeRetryBaseWait * time.Duration(attempt)
			log.Printf("WARNING: task store operation failed (attempt %d/%d), retrying in %s: %v",
				attempt, storeRetryAttempts, wait, err)
			time.Sleep(wait)
		}
	}
	return lastErr
}

// Helpers for building partial updates without ceremony at call sites.

func StatusPtr(s models.TaskStatus) *models.TaskStatus { return &s }
func IntPtr(i int) *int                                { return &i }
func StringPtr(s string) *string                       { return &s }
