package mq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

// dlqFake моделирует семантику брокера для Get/Ack/Nack: неподтверждённые
// сообщения невидимы для Get, а Nack с requeue возвращает сообщение в
// голову очереди.
type dlqFake struct {
	pending  []amqp.Delivery
	unacked  map[uint64]amqp.Delivery
	acked    []uint64
	requeued []uint64
	nextTag  uint64
}

func newDLQFake() *dlqFake {
	return &dlqFake{unacked: make(map[uint64]amqp.Delivery)}
}

func (f *dlqFake) add(messageID string, body []byte, headers amqp.Table) {
	f.nextTag++
	f.pending = append(f.pending, amqp.Delivery{
		Acknowledger: f,
		DeliveryTag:  f.nextTag,
		MessageId:    messageID,
		Body:         body,
		Headers:      headers,
	})
}

func (f *dlqFake) get() (amqp.Delivery, bool, error) {
	if len(f.pending) == 0 {
		return amqp.Delivery{}, false, nil
	}
	msg := f.pending[0]
	f.pending = f.pending[1:]
	f.unacked[msg.DeliveryTag] = msg
	return msg, true, nil
}

func (f *dlqFake) Ack(tag uint64, multiple bool) error {
	f.acked = append(f.acked, tag)
	delete(f.unacked, tag)
	return nil
}

func (f *dlqFake) Nack(tag uint64, multiple, requeue bool) error {
	msg, ok := f.unacked[tag]
	if !ok {
		return nil
	}
	delete(f.unacked, tag)
	if requeue {
		f.requeued = append(f.requeued, tag)
		f.pending = append([]amqp.Delivery{msg}, f.pending...)
	}
	return nil
}

func (f *dlqFake) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

type fakeRawPublisher struct {
	exchanges []Exchange
	keys      []RoutingKey
	bodies    [][]byte
	err       error
}

func (p *fakeRawPublisher) PublishRaw(ctx context.Context, exchange Exchange, routingKey RoutingKey, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.exchanges = append(p.exchanges, exchange)
	p.keys = append(p.keys, routingKey)
	p.bodies = append(p.bodies, body)
	return nil
}

func testDLQ(pub rawPublisher) *DLQ {
	return &DLQ{publisher: pub, logger: slog.New(slog.DiscardHandler)}
}

func deathHeaders(exchange, routingKey string) amqp.Table {
	return amqp.Table{
		"x-death": []any{
			amqp.Table{
				"exchange":     exchange,
				"reason":       "rejected",
				"routing-keys": []any{routingKey},
			},
		},
	}
}

func TestPeek_ListsDistinctMessages(t *testing.T) {
	f := newDLQFake()
	f.add("m1", []byte(`{"retryCount":3}`), deathHeaders("email.exchange", "email.routing.key"))
	f.add("m2", []byte(`{"retryCount":3}`), deathHeaders("email.exchange", "email.routing.key"))
	f.add("m3", []byte(`{"retryCount":3}`), deathHeaders("export.exchange", "export.routing.key"))

	entries, err := testDLQ(nil).peek(f.get, 10)
	if err != nil {
		t.Fatalf("peek failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	ids := map[string]bool{}
	for _, e := range entries {
		if ids[e.MessageID] {
			t.Fatalf("message %s listed more than once", e.MessageID)
		}
		ids[e.MessageID] = true
	}

	// Все сообщения вернулись в очередь и ничего не висит неподтверждённым
	if len(f.pending) != 3 {
		t.Errorf("expected 3 messages back in queue, got %d", len(f.pending))
	}
	if len(f.unacked) != 0 {
		t.Errorf("expected no unacked messages after peek, got %d", len(f.unacked))
	}
	if len(f.acked) != 0 {
		t.Error("peek must not consume messages")
	}
}

func TestPeek_Limit(t *testing.T) {
	f := newDLQFake()
	f.add("m1", []byte(`{}`), nil)
	f.add("m2", []byte(`{}`), nil)
	f.add("m3", []byte(`{}`), nil)

	entries, err := testDLQ(nil).peek(f.get, 2)
	if err != nil {
		t.Fatalf("peek failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if len(f.pending) != 3 {
		t.Errorf("expected all 3 messages back in queue, got %d", len(f.pending))
	}
}

func TestReplay_SkipsUnreplayableHead(t *testing.T) {
	f := newDLQFake()
	// Сообщение без происхождения стоит в голове очереди и не должно
	// заслонять пригодное за ним
	f.add("stuck", []byte(`{"retryCount":3}`), nil)
	f.add("good", []byte(`{"retryCount":3}`), deathHeaders("export.exchange", "export.routing.key"))

	pub := &fakeRawPublisher{}
	n, err := testDLQ(pub).replay(context.Background(), f.get, 10)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 replayed message, got %d", n)
	}
	if len(pub.exchanges) != 1 || pub.exchanges[0] != Exchange("export.exchange") {
		t.Errorf("expected republish to export.exchange, got %v", pub.exchanges)
	}

	var m map[string]any
	if err := json.Unmarshal(pub.bodies[0], &m); err != nil {
		t.Fatalf("replayed body is invalid json: %v", err)
	}
	if m["retryCount"] != float64(0) {
		t.Errorf("replayed task must start with retryCount 0, got %v", m["retryCount"])
	}

	// Непригодное осталось в DLQ, пригодное потреблено
	if len(f.pending) != 1 || f.pending[0].MessageId != "stuck" {
		t.Errorf("expected only unreplayable message back in queue, got %+v", f.pending)
	}
	if len(f.acked) != 1 {
		t.Errorf("expected 1 acked message, got %d", len(f.acked))
	}
}

func TestReplay_PublishFailureKeepsMessage(t *testing.T) {
	f := newDLQFake()
	f.add("m1", []byte(`{"retryCount":3}`), deathHeaders("email.exchange", "email.routing.key"))

	pub := &fakeRawPublisher{err: errors.New("broker unavailable")}
	n, err := testDLQ(pub).replay(context.Background(), f.get, 10)
	if err == nil {
		t.Fatal("expected publish error to surface")
	}
	if n != 0 {
		t.Errorf("expected 0 replayed messages, got %d", n)
	}
	if len(f.pending) != 1 {
		t.Errorf("failed message must stay in dlq, pending %d", len(f.pending))
	}
}

func TestEntryOf(t *testing.T) {
	msg := amqp.Delivery{
		MessageId: "abc-123",
		Body:      []byte(`{"retryCount":3}`),
		Headers: amqp.Table{
			"x-death": []any{
				amqp.Table{
					"exchange":     "email.exchange",
					"reason":       "rejected",
					"routing-keys": []any{"email.routing.key"},
				},
			},
		},
	}

	entry := entryOf(msg)

	if entry.MessageID != "abc-123" {
		t.Errorf("expected message id abc-123, got %q", entry.MessageID)
	}
	if entry.Exchange != "email.exchange" {
		t.Errorf("expected origin exchange email.exchange, got %q", entry.Exchange)
	}
	if entry.RoutingKey != "email.routing.key" {
		t.Errorf("expected routing key email.routing.key, got %q", entry.RoutingKey)
	}
	if entry.Reason != "rejected" {
		t.Errorf("expected reason rejected, got %q", entry.Reason)
	}
}

func TestEntryOf_NoDeathHeader(t *testing.T) {
	msg := amqp.Delivery{MessageId: "x", Body: []byte(`{}`)}

	entry := entryOf(msg)
	if entry.Exchange != "" || entry.RoutingKey != "" {
		t.Errorf("message without x-death must have no origin, got %+v", entry)
	}
}

func TestResetRetryCount(t *testing.T) {
	body := []byte(`{"taskId":"abc","retryCount":3,"subject":"hi"}`)

	out := resetRetryCount(body)

	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("reset produced invalid json: %v", err)
	}
	if m["retryCount"] != float64(0) {
		t.Errorf("expected retryCount 0, got %v", m["retryCount"])
	}
	if m["subject"] != "hi" {
		t.Error("other fields must survive the reset")
	}
}

func TestResetRetryCount_Malformed(t *testing.T) {
	// Невалидный JSON возвращается как есть — решение остаётся за worker'ом
	body := []byte(`not json`)
	if got := resetRetryCount(body); string(got) != "not json" {
		t.Errorf("malformed body must pass through unchanged, got %q", got)
	}
}
