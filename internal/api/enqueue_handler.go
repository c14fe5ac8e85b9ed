package api

import (
	"encoding/json"
	"net/http"

	"github.com/haple/bazaar/internal/task"
	"github.com/haple/bazaar/internal/telemetry"
)

// EnqueueEmail — POST /api/v1/emails.
// Ставит письмо в очередь и возвращает 202 с taskId.
func (h *Handler) EnqueueEmail(w http.ResponseWriter, r *http.Request) {
	var req EnqueueEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json body")
		return
	}

	t := &task.EmailTask{
		To:           req.To,
		Subject:      req.Subject,
		Content:      req.Content,
		TemplateName: req.TemplateName,
		Variables:    req.Variables,
		EmailType:    req.EmailType,
	}

	if err := h.publisher.EnqueueEmail(r.Context(), t); err != nil {
		HandleEnqueueError(w, telemetry.FromContext(r.Context()), err)
		return
	}

	Accepted(w, EnqueuedResponse{TaskID: t.TaskID})
}

// EnqueueExport — POST /api/v1/exports.
// Ставит генерацию отчёта в очередь и возвращает 202 с taskId и именем файла.
func (h *Handler) EnqueueExport(w http.ResponseWriter, r *http.Request) {
	var req EnqueueExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json body")
		return
	}

	t := &task.ExportTask{
		UserID:     req.UserID,
		ExportType: req.ExportType,
		FileName:   req.FileName,
		Parameters: req.Parameters,
	}

	if err := h.publisher.EnqueueExport(r.Context(), t); err != nil {
		HandleEnqueueError(w, telemetry.FromContext(r.Context()), err)
		return
	}

	Accepted(w, EnqueuedResponse{TaskID: t.TaskID, FileName: t.FileName})
}
