package httpapi

import "time"

// PolicyOffsetRequest is one custom reminder offset in the creation payload.
type PolicyOffsetRequest struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

// CreateTaskRequest is the JSON body of POST /api/v1/tasks.
type CreateTaskRequest struct {
	Title                  string                `json:"title"`
	Description            string                `json:"description,omitempty"`
	DueDate                string                `json:"dueDate"`
	Targets                string                `json:"targets"`
	EstimatedDurationHours float64               `json:"estimatedDurationHours,omitempty"`
	Comment                string                `json:"comment,omitempty"`
	Link                   string                `json:"link,omitempty"`
	Policy                 []PolicyOffsetRequest `json:"policy,omitempty"`
}

// CreateTaskResponse is returned on successful creation.
type CreateTaskResponse struct {
	TaskID    string `json:"taskId"`
	MessageID string `json:"messageId"`
}

// TaskResponse is the read model returned for a single task.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueAt       time.Time `json:"dueAt"`
	Targets     []string  `json:"targets"`
	ChannelID   string    `json:"channelId"`
	MessageID   string    `json:"messageId"`
	Permalink   string    `json:"permalink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
