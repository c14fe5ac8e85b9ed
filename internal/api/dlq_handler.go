package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/haple/bazaar/internal/telemetry"
)

const defaultDLQLimit = 20

// ListDLQ — GET /api/v1/dlq?limit=N.
// Возвращает сообщения из dead-letter очереди, не удаляя их.
func (h *Handler) ListDLQ(w http.ResponseWriter, r *http.Request) {
	limit := defaultDLQLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.dlq.Peek(r.Context(), limit)
	if err != nil {
		InternalError(w, telemetry.FromContext(r.Context()), err)
		return
	}

	Success(w, entries)
}

// ReplayDLQ — POST /api/v1/dlq/replay.
// Переиздаёт сообщения из DLQ в исходные exchange'ы со сброшенным
// retryCount.
func (h *Handler) ReplayDLQ(w http.ResponseWriter, r *http.Request) {
	req := DLQReplayRequest{Limit: defaultDLQLimit}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid json body")
			return
		}
	}
	if req.Limit <= 0 {
		req.Limit = defaultDLQLimit
	}

	replayed, err := h.dlq.Replay(r.Context(), req.Limit)
	if err != nil {
		InternalError(w, telemetry.FromContext(r.Context()), err)
		return
	}

	Success(w, DLQReplayResponse{Replayed: replayed})
}
