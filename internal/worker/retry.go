package worker

import (
	"context"
	"time"

	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/telemetry"
)

// Терминальные исходы обработки для метрик.
const (
	outcomeAcked        = "acked"
	outcomeRetried      = "retried"
	outcomeDeadLettered = "dead_lettered"
)

// ack подтверждает доставку и фиксирует успех.
func (w *Worker) ack(d *mq.Delivery, class string) {
	if err := d.Ack(); err != nil {
		w.logger.Error("failed to ack delivery", "class", class, "error", err)
		return
	}
	telemetry.TasksProcessed.WithLabelValues(class, outcomeAcked).Inc()
}

// deadLetter отклоняет доставку без requeue — брокер переложит её в DLQ.
func (w *Worker) deadLetter(d *mq.Delivery, class, reason string) {
	w.logger.Error("task dead-lettered", "class", class, "reason", reason)
	if err := d.Nack(false); err != nil {
		w.logger.Error("failed to nack delivery", "class", class, "error", err)
		return
	}
	telemetry.TasksProcessed.WithLabelValues(class, outcomeDeadLettered).Inc()
}

// retry переиздаёт задачу с инкрементированным retryCount и подтверждает
// оригинал. Перед переизданием выдерживается backoff-пауза.
//
// Если переиздание не удалось (брокер недоступен), оригинал возвращается
// в очередь как есть — задача не теряется, хотя счётчик попыток при такой
// доставке не продвинется.
func (w *Worker) retry(ctx context.Context, d *mq.Delivery, class string, retryCount int, republish func(context.Context) error) {
	delay := w.backoff(retryCount)

	w.logger.Warn("task failed, scheduling retry",
		"class", class,
		"retry_count", retryCount,
		"delay", delay,
	)

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		// Процесс останавливается — вернуть сообщение брокеру
		d.Nack(true)
		return
	}

	if err := republish(ctx); err != nil {
		w.logger.Error("failed to republish task, requeueing original",
			"class", class,
			"error", err,
		)
		d.Nack(true)
		return
	}

	if err := d.Ack(); err != nil {
		w.logger.Error("failed to ack original after republish", "class", class, "error", err)
		return
	}
	telemetry.TasksProcessed.WithLabelValues(class, outcomeRetried).Inc()
}

// backoff возвращает экспоненциальную задержку перед попыткой retryCount+1.
func (w *Worker) backoff(retryCount int) time.Duration {
	delay := w.backoffBase
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= w.backoffMax {
			return w.backoffMax
		}
	}
	return delay
}
