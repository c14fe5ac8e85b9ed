package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Enqueue
	mux.Handle("POST /api/v1/emails", chain(http.HandlerFunc(h.EnqueueEmail)))
	mux.Handle("POST /api/v1/exports", chain(http.HandlerFunc(h.EnqueueExport)))

	// Dead-letter queue
	mux.Handle("GET /api/v1/dlq", chain(http.HandlerFunc(h.ListDLQ)))
	mux.Handle("POST /api/v1/dlq/replay", chain(http.HandlerFunc(h.ReplayDLQ)))
}
