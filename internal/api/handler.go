package api

import (
	"context"
	"log/slog"

	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/task"
)

// Publisher — producer-сторона очередей задач (см. mq.Publisher).
type Publisher interface {
	EnqueueEmail(ctx context.Context, t *task.EmailTask) error
	EnqueueExport(ctx context.Context, t *task.ExportTask) error
}

// DLQBrowser — просмотр и replay dead-letter очереди (см. mq.DLQ).
type DLQBrowser interface {
	Peek(ctx context.Context, limit int) ([]mq.DLQEntry, error)
	Replay(ctx context.Context, limit int) (int, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	publisher Publisher
	dlq       DLQBrowser
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Publisher Publisher
	DLQ       DLQBrowser
	Logger    *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		publisher: cfg.Publisher,
		dlq:       cfg.DLQ,
		logger:    cfg.Logger,
	}
}
