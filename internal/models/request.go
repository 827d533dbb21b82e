package models

// GenerateInfographicRequest represents the request to generate an infographic
type GenerateInfographicRequest struct {
	Content string `json:"content" binding:"required"`
	Mode    string `json:"mode,omitempty"` // "full" (default) or "summary"
	Size    string `json:"size,omitempty"` // output size key, defaults to "16:9"
}

// TaskResponse represents the response when creating a task.
// Result is only populated on the synchronous-complete fast path.
type TaskResponse struct {
	ID     string     `json:"id"`
	Status TaskStatus `json:"status"`
	Result string     `json:"result,omitempty"`
}

// StatusResponse represents the response when checking task status
type StatusResponse struct {
	ID       string     `json:"id"`
	Status   TaskStatus `json:"status"`
	Progress int        `json:"progress"`
	Result   string     `json:"result,omitempty"`
	Error    string     `json:"error,omitempty"`
}
