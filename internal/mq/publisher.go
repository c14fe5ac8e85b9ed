package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/haple/bazaar/internal/task"
	"github.com/haple/bazaar/internal/telemetry"
)

// Publisher ставит задачи в очередь (producer-сторона конвейера).
//
// Публикация fire-and-forget относительно выполнения: успешный возврат
// означает только «брокер durable принял сообщение», не «обработано».
// Ошибка публикации возвращается синхронно вызывающему коду.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// EnqueueEmail публикует EmailTask в email.exchange.
//
// Проставляет taskId и requestedAt, если они не заданы; retryCount
// новой задачи всегда 0. Невалидная задача отклоняется до публикации.
func (p *Publisher) EnqueueEmail(ctx context.Context, t *task.EmailTask) error {
	stampEmail(t)
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}

	if err := p.publishJSON(ctx, ExchangeEmail, RoutingKeyEmail, t.TaskID, t); err != nil {
		return err
	}

	telemetry.TasksEnqueued.WithLabelValues("email").Inc()
	p.logger.Info("email task enqueued",
		"task_id", t.TaskID,
		"email_type", t.EmailType,
		"recipients", len(t.To),
	)
	return nil
}

// EnqueueExport публикует ExportTask в export.exchange.
//
// Пустой fileName заменяется детерминированным именем, производным от
// taskId — повторная доставка перезапишет тот же файл.
func (p *Publisher) EnqueueExport(ctx context.Context, t *task.ExportTask) error {
	stampExport(t)
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}

	if err := p.publishJSON(ctx, ExchangeExport, RoutingKeyExport, t.TaskID, t); err != nil {
		return err
	}

	telemetry.TasksEnqueued.WithLabelValues("export").Inc()
	p.logger.Info("export task enqueued",
		"task_id", t.TaskID,
		"export_type", t.ExportType,
		"file_name", t.FileName,
	)
	return nil
}

// RepublishEmail переиздаёт EmailTask как есть (retry-путь worker'а).
// Никаких штампов: retryCount уже инкрементирован вызывающей стороной.
func (p *Publisher) RepublishEmail(ctx context.Context, t *task.EmailTask) error {
	return p.publishJSON(ctx, ExchangeEmail, RoutingKeyEmail, t.TaskID, t)
}

// RepublishExport переиздаёт ExportTask как есть (retry-путь worker'а).
func (p *Publisher) RepublishExport(ctx context.Context, t *task.ExportTask) error {
	return p.publishJSON(ctx, ExchangeExport, RoutingKeyExport, t.TaskID, t)
}

// PublishRaw публикует готовое тело в указанный exchange/routing key.
// Используется при replay из DLQ.
func (p *Publisher) PublishRaw(ctx context.Context, exchange Exchange, routingKey RoutingKey, body []byte) error {
	return p.publish(ctx, exchange, routingKey, "", body)
}

// publishJSON сериализует payload и публикует его.
func (p *Publisher) publishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, id uuid.UUID, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal task: %w", ErrPublish, err)
	}
	return p.publish(ctx, exchange, routingKey, id.String(), body)
}

func (p *Publisher) publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, messageID string, body []byte) error {
	err := p.conn.WithChannel(func(ch *amqp.Channel) error {
		return ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,              // mandatory
			false,              // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    messageID,
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
	})
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrPublish, exchange, routingKey, err)
	}

	p.logger.Debug("published message",
		"exchange", exchange,
		"routing_key", routingKey,
		"message_id", messageID,
	)
	return nil
}

// stampEmail проставляет метаданные постановки в очередь.
func stampEmail(t *task.EmailTask) {
	if t.TaskID == uuid.Nil {
		t.TaskID = uuid.New()
	}
	if t.RequestedAt.IsZero() {
		t.RequestedAt = time.Now()
	}
	t.RetryCount = 0
}

// stampExport проставляет метаданные постановки в очередь.
func stampExport(t *task.ExportTask) {
	if t.TaskID == uuid.Nil {
		t.TaskID = uuid.New()
	}
	if t.RequestedAt.IsZero() {
		t.RequestedAt = time.Now()
	}
	t.RetryCount = 0
	if t.FileName == "" {
		t.FileName = task.DefaultFileName(t.ExportType, t.TaskID)
	}
}
