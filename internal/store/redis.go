package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"infographic-service/internal/config"
	"infographic-service/internal/models"
)

const (
	taskKeyPrefix        = "task:"
	fingerprintKeyPrefix = "task:fp:"
)

// RedisTaskStore persists tasks as JSON records in Redis, one key per task
// plus a fingerprint index key pointing completed submissions at their task
// id. Records expire after the configured TTL.
type RedisTaskStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTaskStore connects to Redis and verifies the connection
func NewRedisTaskStore(cfg config.RedisConfig) (*RedisTaskStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Addr, err)
	}

	return &RedisTaskStore{rdb: rdb, ttl: cfg.TTL}, nil
}

// Create inserts a new task record
func (s *RedisTaskStore) Create(ctx context.Context, task *models.GenerationTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}
	return withLinearRetry(func() error {
		return s.rdb.Set(ctx, taskKey(task.ID), payload, s.ttl).Err()
	})
}

// Get retrieves a task record by id
func (s *RedisTaskStore) Get(ctx context.Context, taskID string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := withLinearRetry(func() error {
		data, err := s.rdb.Get(ctx, taskKey(taskID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read task %s: %w", taskID, err)
		}
		if err := json.Unmarshal(data, &task); err != nil {
			return fmt.Errorf("failed to decode task %s: %w", taskID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update reads, mutates and rewrites the task record. There are no concurrent
// writers for a given task id, so read-modify-write is safe here.
func (s *RedisTaskStore) Update(ctx context.Context, taskID string, update UpdateTask) error {
	return withLinearRetry(func() error {
		key := taskKey(taskID)
		data, err := s.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read task %s: %w", taskID, err)
		}

		var task models.GenerationTask
		if err := json.Unmarshal(data, &task); err != nil {
			return fmt.Errorf("failed to decode task %s: %w", taskID, err)
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
		task.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(&task)
		if err != nil {
			return fmt.Errorf("failed to marshal task %s: %w", taskID, err)
		}
		if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to write task %s: %w", taskID, err)
		}

		// Maintain the fingerprint index for completed tasks
		if task.Status == models.TaskStatusCompleted && task.Fingerprint != "" {
			if err := s.rdb.Set(ctx, fingerprintKey(task.Fingerprint), task.ID, s.ttl).Err(); err != nil {
				return fmt.Errorf("failed to index fingerprint for task %s: %w", taskID, err)
			}
		}
		return nil
	})
}

// FindCompletedByFingerprint resolves the fingerprint index key and loads the
// referenced task
func (s *RedisTaskStore) FindCompletedByFingerprint(ctx context.Context, fingerprint string) (*models.GenerationTask, error) {
	var taskID string
	err := withLinearRetry(func() error {
		id, err := s.rdb.Get(ctx, fingerprintKey(fingerprint)).Result()
		if errors.Is(err, redis.Nil) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read fingerprint index: %w", err)
		}
		taskID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Close closes the Redis client
func (s *RedisTaskStore) Close() error {
	return s.rdb.Close()
}

func taskKey(id string) string {
	return taskKeyPrefix + id
}

func fingerprintKey(fp string) string {
	return fingerprintKeyPrefix + fp
}
