package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// TaskStatus represents the status of a generation task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Mode controls how much of the input text the infographic covers
type Mode string

const (
	ModeFull    Mode = "full"
	ModeSummary Mode = "summary"
)

// Size identifies the output canvas format
type Size string

const (
	Size16x9        Size = "16:9"
	SizeA4Landscape Size = "a4-landscape"
	SizeA4Portrait  Size = "a4-portrait"
	SizeMobile      Size = "750"
	SizeStory       Size = "1080"
)

// ParseMode validates a requested mode, defaulting to "full" when empty
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeFull, nil
	case ModeFull, ModeSummary:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode: %q (expected \"full\" or \"summary\")", s)
}

// ParseSize validates a requested size key, defaulting to 16:9 when empty
func ParseSize(s string) (Size, error) {
	switch Size(s) {
	case "":
		return Size16x9, nil
	case Size16x9, SizeA4Landscape, SizeA4Portrait, SizeMobile, SizeStory:
		return Size(s), nil
	}
	return "", fmt.Errorf("unknown size: %q", s)
}

// GenerationTask is the lifecycle record for one infographic generation request.
// A task is written by exactly one background job; status readers never mutate it.
type GenerationTask struct {
	ID          string     `json:"id" bson:"_id"`
	Status      TaskStatus `json:"status" bson:"status"`
	Progress    int        `json:"progress" bson:"progress"`
	Mode        Mode       `json:"mode" bson:"mode"`
	Size        Size       `json:"size" bson:"size"`
	Fingerprint string     `json:"fingerprint,omitempty" bson:"fingerprint"`
	Result      string     `json:"result,omitempty" bson:"result,omitempty"`
	Error       string     `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Terminal reports whether the task has reached a final state
func (t *GenerationTask) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// TaskFingerprint derives a stable identity for a submission so that repeated
// submissions of the same text can reuse a previously generated result
func TaskFingerprint(content string, mode Mode, size Size) string {
	keyData := fmt.Sprintf("%s:%s:%s", content, mode, size)
	hash := sha256.Sum256([]byte(keyData))
	return hex.EncodeToString(hash[:])
}
