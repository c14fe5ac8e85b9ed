package worker

import (
	"context"
	"errors"
	"time"

	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/task"
	"github.com/haple/bazaar/internal/telemetry"
)

const classEmail = "email"

// handleEmailDelivery — обработчик одной доставки из email.queue.
// Все исходы сводятся к явному ack/nack; ошибки наружу не выходят.
func (w *Worker) handleEmailDelivery(ctx context.Context, d *mq.Delivery) {
	start := time.Now()
	defer func() {
		telemetry.TaskDuration.WithLabelValues(classEmail).Observe(time.Since(start).Seconds())
	}()

	var t task.EmailTask
	if err := unmarshalTask(d.Body, &t); err != nil {
		w.deadLetter(d, classEmail, err.Error())
		return
	}

	logger := telemetry.WithTaskID(w.logger, t.TaskID.String())

	if err := t.Validate(); err != nil {
		w.deadLetter(d, classEmail, "validate: "+err.Error())
		return
	}

	logger.Info("processing email task",
		"email_type", t.EmailType,
		"recipients", len(t.To),
		"retry_count", t.RetryCount,
	)

	if err := w.sendEmail(ctx, &t); err != nil {
		// Ошибка рендеринга шаблона — permanent, транспорт — transient
		if isPermanentEmailErr(err) {
			w.deadLetter(d, classEmail, err.Error())
			return
		}
		if !t.CanRetry() {
			logger.Error("email retry attempts exhausted", "error", err)
			w.deadLetter(d, classEmail, ErrRetryExhausted.Error())
			return
		}
		next := t.NextAttempt()
		w.retry(ctx, d, classEmail, t.RetryCount, func(ctx context.Context) error {
			return w.publisher.RepublishEmail(ctx, next)
		})
		return
	}

	logger.Info("email task succeeded", "email_type", t.EmailType)
	w.ack(d, classEmail)
}

// sendEmail рендерит тело и отправляет письмо с дедлайном на SMTP-вызов.
func (w *Worker) sendEmail(ctx context.Context, t *task.EmailTask) error {
	dedupKey := t.TaskID.String()

	if sent, err := w.guard.AlreadySent(ctx, dedupKey); err != nil {
		w.logger.Warn("send guard unavailable, proceeding without dedup", "error", err)
	} else if sent {
		w.logger.Info("duplicate email delivery, skipping send", "task_id", t.TaskID)
		return nil
	}

	body := t.Content
	isHTML := false
	if t.Templated() {
		rendered, err := w.templates.Render(t.Template(), t.Variables)
		if err != nil {
			return &templateError{err: err}
		}
		body = rendered
		isHTML = true
	}

	callCtx, cancel := w.withCallTimeout(ctx)
	defer cancel()
	if err := w.mailer.Send(callCtx, t.To, t.Subject, body, isHTML); err != nil {
		return err
	}

	if err := w.guard.MarkSent(ctx, dedupKey); err != nil {
		// Письмо ушло; потеря отметки вернёт нас к обычному at-least-once
		w.logger.Warn("failed to mark email as sent", "task_id", t.TaskID, "error", err)
	}
	return nil
}

// templateError оборачивает ошибку рендеринга для классификации.
type templateError struct {
	err error
}

func (e *templateError) Error() string { return ErrTemplateRender.Error() + ": " + e.err.Error() }
func (e *templateError) Unwrap() error { return ErrTemplateRender }

func isPermanentEmailErr(err error) bool {
	return errors.Is(err, ErrTemplateRender)
}
