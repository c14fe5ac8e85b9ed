package api

import (
	"github.com/google/uuid"

	"github.com/haple/bazaar/internal/task"
)

// EnqueueEmailRequest — запрос на постановку письма в очередь.
type EnqueueEmailRequest struct {
	EmailType    task.EmailKind `json:"emailType"`
	To           []string       `json:"to"`
	Subject      string         `json:"subject"`
	Content      string         `json:"content,omitempty"`
	TemplateName string         `json:"templateName,omitempty"`
	Variables    map[string]any `json:"variables,omitempty"`
}

// EnqueueExportRequest — запрос на постановку экспорта в очередь.
type EnqueueExportRequest struct {
	ExportType task.ExportKind   `json:"exportType"`
	UserID     int64             `json:"userId"`
	FileName   string            `json:"fileName,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// EnqueuedResponse — ответ на успешную постановку.
type EnqueuedResponse struct {
	TaskID   uuid.UUID `json:"taskId"`
	FileName string    `json:"fileName,omitempty"`
}

// DLQReplayRequest — запрос на replay из DLQ.
type DLQReplayRequest struct {
	Limit int `json:"limit,omitempty"`
}

// DLQReplayResponse — результат replay.
type DLQReplayResponse struct {
	Replayed int `json:"replayed"`
}
