package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DLQ — операционный доступ к dead-letter очереди: просмотр и replay.
//
// Permanent-ошибки наблюдаемы только здесь и в логах; replay — ручной
// инструмент повторного запуска после устранения причины.
type DLQ struct {
	conn      *Connection
	publisher rawPublisher
	logger    *slog.Logger
}

// rawPublisher — минимальный контракт публикации, нужный replay.
type rawPublisher interface {
	PublishRaw(ctx context.Context, exchange Exchange, routingKey RoutingKey, body []byte) error
}

// NewDLQ создаёт сервис работы с dead-letter очередью.
func NewDLQ(conn *Connection, publisher *Publisher, logger *slog.Logger) *DLQ {
	return &DLQ{conn: conn, publisher: publisher, logger: logger}
}

// DLQEntry — одно сообщение в dead-letter очереди.
type DLQEntry struct {
	// MessageID — идентификатор сообщения (taskId).
	MessageID string `json:"message_id"`

	// Exchange и RoutingKey — исходный маршрут до dead-lettering.
	Exchange   string `json:"exchange"`
	RoutingKey string `json:"routing_key"`

	// Reason — причина dead-lettering: "rejected" или "expired" (TTL).
	Reason string `json:"reason"`

	// Body — тело задачи.
	Body json.RawMessage `json:"body"`
}

// ErrUnknownOrigin — у сообщения нет пригодного x-death заголовка.
var ErrUnknownOrigin = errors.New("dead-lettered message has no origin")

// getFunc читает следующее сообщение из очереди (ch.Get без auto-ack).
type getFunc func() (amqp.Delivery, bool, error)

// Peek возвращает до limit сообщений из DLQ, не удаляя их.
// Просмотренные сообщения возвращаются в очередь (порядок может измениться).
func (q *DLQ) Peek(ctx context.Context, limit int) ([]DLQEntry, error) {
	var entries []DLQEntry

	err := q.conn.WithChannel(func(ch *amqp.Channel) error {
		var err error
		entries, err = q.peek(func() (amqp.Delivery, bool, error) {
			return ch.Get(string(QueueDLQ), false)
		}, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// peek держит просмотренные сообщения неподтверждёнными до конца обхода
// и лишь затем возвращает их в очередь. Немедленный requeue ставит
// сообщение обратно в голову очереди, и следующий Get прочитал бы его же.
func (q *DLQ) peek(get getFunc, limit int) ([]DLQEntry, error) {
	var entries []DLQEntry

	var seen []amqp.Delivery
	defer func() {
		for _, msg := range seen {
			if err := msg.Nack(false, true); err != nil {
				q.logger.Error("failed to requeue dlq message",
					"message_id", msg.MessageId,
					"error", err,
				)
			}
		}
	}()

	for i := 0; i < limit; i++ {
		msg, ok, err := get()
		if err != nil {
			return nil, fmt.Errorf("get from dlq: %w", err)
		}
		if !ok {
			break
		}

		seen = append(seen, msg)
		entries = append(entries, entryOf(msg))
	}
	return entries, nil
}

// Replay переиздаёт до limit сообщений из DLQ в их исходные exchange'ы
// со сброшенным retryCount. Возвращает число переизданных.
//
// Сообщение без распознаваемого происхождения остаётся в DLQ.
func (q *DLQ) Replay(ctx context.Context, limit int) (int, error) {
	replayed := 0

	err := q.conn.WithChannel(func(ch *amqp.Channel) error {
		var err error
		replayed, err = q.replay(ctx, func() (amqp.Delivery, bool, error) {
			return ch.Get(string(QueueDLQ), false)
		}, limit)
		return err
	})

	return replayed, err
}

// replay переиздаёт пригодные сообщения. Непригодные остаются
// неподтверждёнными до конца обхода: немедленный requeue вернул бы их
// в голову очереди, и обход крутился бы на одном сообщении, не доходя
// до пригодных за ним.
func (q *DLQ) replay(ctx context.Context, get getFunc, limit int) (int, error) {
	replayed := 0

	var keep []amqp.Delivery
	defer func() {
		for _, msg := range keep {
			if err := msg.Nack(false, true); err != nil {
				q.logger.Error("failed to return message to dlq",
					"message_id", msg.MessageId,
					"error", err,
				)
			}
		}
	}()

	for i := 0; i < limit; i++ {
		msg, ok, err := get()
		if err != nil {
			return replayed, fmt.Errorf("get from dlq: %w", err)
		}
		if !ok {
			break
		}

		entry := entryOf(msg)
		if entry.Exchange == "" || entry.Exchange == string(ExchangeDLX) {
			q.logger.Warn("dlq message has no replayable origin, keeping",
				"message_id", entry.MessageID,
			)
			keep = append(keep, msg)
			continue
		}

		body := resetRetryCount(msg.Body)
		if err := q.publisher.PublishRaw(ctx, Exchange(entry.Exchange), RoutingKey(entry.RoutingKey), body); err != nil {
			// Публикация не удалась — сообщение остаётся в DLQ
			keep = append(keep, msg)
			return replayed, err
		}

		if err := msg.Ack(false); err != nil {
			return replayed, fmt.Errorf("ack replayed message: %w", err)
		}

		replayed++
		q.logger.Info("dlq message replayed",
			"message_id", entry.MessageID,
			"exchange", entry.Exchange,
		)
	}
	return replayed, nil
}

// entryOf извлекает происхождение сообщения из x-death заголовка.
func entryOf(msg amqp.Delivery) DLQEntry {
	entry := DLQEntry{
		MessageID: msg.MessageId,
		Body:      json.RawMessage(msg.Body),
	}

	deaths, _ := msg.Headers["x-death"].([]any)
	if len(deaths) == 0 {
		return entry
	}
	death, _ := deaths[0].(amqp.Table)
	if death == nil {
		return entry
	}

	if ex, ok := death["exchange"].(string); ok {
		entry.Exchange = ex
	}
	if reason, ok := death["reason"].(string); ok {
		entry.Reason = reason
	}
	if keys, ok := death["routing-keys"].([]any); ok && len(keys) > 0 {
		if rk, ok := keys[0].(string); ok {
			entry.RoutingKey = rk
		}
	}
	return entry
}

// resetRetryCount сбрасывает retryCount в теле задачи перед replay:
// переизданная задача снова получает полный лимит попыток.
func resetRetryCount(body []byte) []byte {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return body
	}
	if _, ok := m["retryCount"]; !ok {
		return body
	}
	m["retryCount"] = 0
	out, err := json.Marshal(m)
	if err != nil {
		return body
	}
	return out
}
