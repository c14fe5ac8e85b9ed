package worker

import (
	"context"
	"time"

	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/report"
	"github.com/haple/bazaar/internal/task"
	"github.com/haple/bazaar/internal/telemetry"
)

const classExport = "export"

// handleExportDelivery — обработчик одной доставки из export.queue.
func (w *Worker) handleExportDelivery(ctx context.Context, d *mq.Delivery) {
	start := time.Now()
	defer func() {
		telemetry.TaskDuration.WithLabelValues(classExport).Observe(time.Since(start).Seconds())
	}()

	var t task.ExportTask
	if err := unmarshalTask(d.Body, &t); err != nil {
		w.deadLetter(d, classExport, err.Error())
		return
	}

	logger := telemetry.WithTaskID(w.logger, t.TaskID.String())

	// Неизвестный exportType и кривое имя файла — permanent, без retry
	if err := t.Validate(); err != nil {
		w.deadLetter(d, classExport, "validate: "+err.Error())
		return
	}

	logger.Info("processing export task",
		"export_type", t.ExportType,
		"user_id", t.UserID,
		"file_name", t.FileName,
		"retry_count", t.RetryCount,
	)

	if err := w.runExport(ctx, &t); err != nil {
		if !t.CanRetry() {
			logger.Error("export retry attempts exhausted", "error", err)
			w.deadLetter(d, classExport, ErrRetryExhausted.Error())
			return
		}
		next := t.NextAttempt()
		w.retry(ctx, d, classExport, t.RetryCount, func(ctx context.Context) error {
			return w.publisher.RepublishExport(ctx, next)
		})
		return
	}

	logger.Info("export task succeeded", "export_type", t.ExportType, "file_name", t.FileName)
	w.ack(d, classExport)
}

// runExport выполняет полный цикл: датасет → PDF → файл → уведомление.
// Любая ошибка участников трактуется как transient.
func (w *Worker) runExport(ctx context.Context, t *task.ExportTask) error {
	dataset, err := w.fetchDataset(ctx, t)
	if err != nil {
		return err
	}

	pdf, err := w.renderer.Render(t.ExportType, dataset)
	if err != nil {
		return err
	}

	if err := w.sink.Write(t.FileName, pdf); err != nil {
		return err
	}

	// Follow-up уведомление — опциональный независимый шаг:
	// его отказ не откатывает уже записанный отчёт
	if w.notifyExport {
		w.notifyUser(ctx, t)
	}

	return nil
}

// fetchDataset выбирает датасет с дедлайном на запрос к БД.
func (w *Worker) fetchDataset(ctx context.Context, t *task.ExportTask) (*report.Dataset, error) {
	callCtx, cancel := w.withCallTimeout(ctx)
	defer cancel()
	return w.source.Fetch(callCtx, t.ExportType, t.Parameters)
}

// notifyUser ставит в очередь письмо о готовом отчёте. Best-effort.
func (w *Worker) notifyUser(ctx context.Context, t *task.ExportTask) {
	callCtx, cancel := w.withCallTimeout(ctx)
	defer cancel()

	email, err := w.source.UserEmail(callCtx, t.UserID)
	if err != nil {
		w.logger.Warn("failed to resolve user email for export notification",
			"task_id", t.TaskID,
			"user_id", t.UserID,
			"error", err,
		)
		return
	}

	if err := w.publisher.EnqueueExportReady(callCtx, email, t.FileName); err != nil {
		w.logger.Warn("failed to enqueue export notification",
			"task_id", t.TaskID,
			"error", err,
		)
	}
}
