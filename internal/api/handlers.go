package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"infographic-service/internal/models"
	"infographic-service/internal/services"
	"infographic-service/internal/store"
	"infographic-service/internal/validation"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	generationService *services.GenerationService
	taskStore         store.TaskStore
	maxContentLength  int
	requestSchema     *gojsonschema.Schema // optional; nil disables schema validation
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	generationService *services.GenerationService,
	taskStore store.TaskStore,
	maxContentLength int,
	requestSchema *gojsonschema.Schema,
) *Handlers {
	return &Handlers{
		generationService: generationService,
		taskStore:         taskStore,
		maxContentLength:  maxContentLength,
		requestSchema:     requestSchema,
	}
}

// GenerateInfographicHandler handles POST /api/infographic
func (h *Handlers) GenerateInfographicHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if h.requestSchema != nil {
		if err := validation.ValidateRequest(body, h.requestSchema); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var req models.GenerateInfographicRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	if len(req.Content) > h.maxContentLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("content exceeds maximum length of %d characters", h.maxContentLength),
		})
		return
	}

	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	size, err := models.ParseSize(req.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.generationService.Start(c.Request.Context(), req.Content, mode, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	// A cached identical submission completes synchronously
	if task.Status == models.TaskStatusCompleted {
		c.JSON(http.StatusOK, models.TaskResponse{
			ID:     task.ID,
			Status: task.Status,
			Result: task.Result,
		})
		return
	}

	c.JSON(http.StatusAccepted, models.TaskResponse{
		ID:     task.ID,
		Status: task.Status,
	})
}

// GetTaskStatusHandler handles GET /api/infographic/:taskId/status
//
// It never hangs and never surfaces a raw store error: an unknown id and a
// degraded store both produce a failed-shaped body (with distinct messages)
// so the polling client needs no special branches beyond its status switch.
func (h *Handlers) GetTaskStatusHandler(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId is required"})
		return
	}

	task, err := h.taskStore.Get(c.Request.Context(), taskID)
	if err != nil {
		message := "Unable to reach the task store, please try again"
		if errors.Is(err, store.ErrTaskNotFound) {
			message = "Generation task not found"
		}
		c.JSON(http.StatusOK, models.StatusResponse{
			ID:       taskID,
			Status:   models.TaskStatusFailed,
			Progress: 0,
			Error:    message,
		})
		return
	}

	response := models.StatusResponse{
		ID:       task.ID,
		Status:   task.Status,
		Progress: task.Progress,
	}
	switch task.Status {
	case models.TaskStatusCompleted:
		response.Result = task.Result
	case models.TaskStatusFailed:
		// Progress on a failed task is meaningless; report it as 0
		response.Progress = 0
		response.Error = task.Error
	}

	c.JSON(http.StatusOK, response)
}
