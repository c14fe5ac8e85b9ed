package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeEmail  Exchange = "email.exchange"
	ExchangeExport Exchange = "export.exchange"
	ExchangeDLX    Exchange = "dlx.exchange"
)

// Queues — имена очередей.
const (
	QueueEmail  Queue = "email.queue"
	QueueExport Queue = "export.queue"
	QueueDLQ    Queue = "dlq.queue"
)

// Routing keys.
const (
	RoutingKeyEmail  RoutingKey = "email.routing.key"
	RoutingKeyExport RoutingKey = "export.routing.key"
	RoutingKeyDLQ    RoutingKey = "dlq.routing.key"
)

// TTL сообщений в очередях задач, миллисекунды.
// По истечении TTL брокер сам перекладывает сообщение в DLQ.
const (
	EmailQueueTTLMs  = 1_800_000 // 30 минут
	ExportQueueTTLMs = 3_600_000 // 60 минут
)

// QueueSpec — декларация одной очереди задач.
type QueueSpec struct {
	Queue      Queue
	Exchange   Exchange
	RoutingKey RoutingKey
	Args       amqp.Table
}

// TaskQueues возвращает декларации очередей задач.
// Обе очереди durable, с TTL и DLX-аргументами, привязаны к своим
// direct-обменникам.
func TaskQueues() []QueueSpec {
	return []QueueSpec{
		{
			Queue:      QueueEmail,
			Exchange:   ExchangeEmail,
			RoutingKey: RoutingKeyEmail,
			Args:       dlxArgs(EmailQueueTTLMs),
		},
		{
			Queue:      QueueExport,
			Exchange:   ExchangeExport,
			RoutingKey: RoutingKeyExport,
			Args:       dlxArgs(ExportQueueTTLMs),
		},
	}
}

// dlxArgs возвращает аргументы очереди задач: TTL и маршрут в DLQ.
func dlxArgs(ttlMs int32) amqp.Table {
	return amqp.Table{
		"x-message-ttl":             ttlMs,
		"x-dead-letter-exchange":    string(ExchangeDLX),
		"x-dead-letter-routing-key": string(RoutingKeyDLQ),
	}
}

// SetupTopology идемпотентно объявляет всю топологию брокера.
// Вызывается один раз на старте процесса; безопасно для уже
// сконфигурированного брокера. Ошибка здесь фатальна для consumer'а.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	for _, ex := range []Exchange{ExchangeEmail, ExchangeExport, ExchangeDLX} {
		err := ch.ExchangeDeclare(
			string(ex), // name
			"direct",   // type
			true,       // durable
			false,      // auto-deleted
			false,      // internal
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex, err)
		}
	}
	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// dlq.queue — без TTL и без собственного DLX
		{QueueDLQ, nil},
	}
	for _, spec := range TaskQueues() {
		queues = append(queues, struct {
			name Queue
			args amqp.Table
		}{spec.Queue, spec.Args})
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}
	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueDLQ, RoutingKeyDLQ, ExchangeDLX},
	}
	for _, spec := range TaskQueues() {
		bindings = append(bindings, struct {
			queue      Queue
			routingKey RoutingKey
			exchange   Exchange
		}{spec.Queue, spec.RoutingKey, spec.Exchange})
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}
	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Bazaar RabbitMQ Topology:

    email.exchange (direct)
    └── email.queue [routing: email.routing.key]
            Consumer: Worker (email)
            TTL: 30m → dlx.exchange

    export.exchange (direct)
    └── export.queue [routing: export.routing.key]
            Consumer: Worker (export)
            TTL: 60m → dlx.exchange

    dlx.exchange (direct)
    └── dlq.queue [routing: dlq.routing.key]
            Manual inspection / replay
  `
}
