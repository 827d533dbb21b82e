package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"infographic-service/internal/models"
)

// MemoryTaskStore keeps tasks in a process-local map. Records survive only as
// long as the process does, and a task is only visible on the instance that
// created it — this backend is a known scaling limit and is meant for
// single-instance deployments.
type MemoryTaskStore struct {
	tasks map[string]*models.GenerationTask
	mutex sync.RWMutex
}

// NewMemoryTaskStore creates an empty in-memory task store
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks: make(map[string]*models.GenerationTask),
	}
}

// Create inserts a new task record
func (s *MemoryTaskStore) Create(ctx context.Context, task *models.GenerationTask) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task already exists: %s", task.ID)
	}

	stored := *task
	s.tasks[task.ID] = &stored
	return nil
}

// Get retrieves a copy of a task by id
func (s *MemoryTaskStore) Get(ctx context.Context, taskID string) (*models.GenerationTask, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, ErrTaskNotFound
	}

	copied := *task
	return &copied, nil
}

// Update applies a partial update to an existing task
func (s *MemoryTaskStore) Update(ctx context.Context, taskID string, update UpdateTask) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return ErrTaskNotFound
	}

	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Progress != nil {
		task.Progress = *update.Progress
	}
	if update.Result != nil {
		task.Result = *update.Result
	}
	if update.Error != nil {
		task.Error = *update.Error
	}
	task.UpdatedAt = time.Now()
	return nil
}

// FindCompletedByFingerprint scans for a completed task matching the
// submission fingerprint
func (s *MemoryTaskStore) FindCompletedByFingerprint(ctx context.Context, fingerprint string) (*models.GenerationTask, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, task := range s.tasks {
		if task.Status == models.TaskStatusCompleted && task.Fingerprint == fingerprint {
			copied := *task
			return &copied, nil
		}
	}
	return nil, ErrTaskNotFound
}

// Close is a no-op for the in-memory store
func (s *MemoryTaskStore) Close() error {
	return nil
}
