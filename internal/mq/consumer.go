package mq

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/haple/bazaar/internal/telemetry"
)

// Handler — обработчик одного доставленного сообщения.
//
// Обработчик обязан завершить доставку явным Ack или Nack: consumer
// за него решений не принимает. Паника в обработчике перехватывается
// consumer'ом и превращается в Nack без requeue (→ DLQ) — поток
// потребления не умирает от ошибки одной задачи.
type Handler func(ctx context.Context, d *Delivery)

// Delivery — доставленное сообщение с методами ack/nack.
type Delivery struct {
	// Body — сырое тело сообщения (JSON задачи).
	Body []byte

	// Raw — исходная AMQP доставка.
	Raw amqp.Delivery
}

// Ack подтверждает успешную обработку сообщения (per-message, не батчем).
func (d *Delivery) Ack() error {
	return d.Raw.Ack(false)
}

// Nack отклоняет сообщение.
// requeue=true — вернуть в очередь, false — отправить в DLQ.
func (d *Delivery) Nack(requeue bool) error {
	return d.Raw.Nack(false, requeue)
}

// Consumer потребляет сообщения из одной очереди RabbitMQ и раздаёт их
// фиксированному пулу worker-горутин. Каждая горутина обрабатывает одно
// сообщение целиком и синхронно.
type Consumer struct {
	conn    *Connection
	logger  *slog.Logger
	queue   Queue
	handler Handler
	workers int

	cancelFunc context.CancelFunc
}

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	// Queue — имя очереди.
	Queue Queue

	// Handler — обработчик сообщений.
	Handler Handler

	// Workers — размер пула listener-горутин (default: 1).
	// Prefetch устанавливается равным размеру пула.
	Workers int
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Consumer{
		conn:    conn,
		logger:  telemetry.WithQueue(logger, string(cfg.Queue)),
		queue:   cfg.Queue,
		handler: cfg.Handler,
		workers: workers,
	}
}

// Start запускает потребление. Блокирует до отмены контекста.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		deliveries, err := c.setupConsume()
		if err != nil {
			c.logger.Error("failed to setup consume", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				c.logger.Info("reconnected, restarting consumer")
				continue
			}
		}

		c.logger.Info("consumer started", "workers", c.workers)

		if err := c.runPool(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("deliveries channel closed, reconnecting")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				continue
			}
		}
	}
}

// setupConsume настраивает канал и начинает потребление.
func (c *Consumer) setupConsume() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	// Prefetch = размер пула: брокер не выдаёт больше неподтверждённых
	// сообщений, чем есть свободных listener'ов
	if err := ch.Qos(c.workers, 0, false); err != nil {
		return nil, err
	}

	return ch.Consume(
		string(c.queue), // queue
		"",              // consumer tag (auto-generated)
		false,           // auto-ack (ack вручную)
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
}

// runPool раздаёт доставки пулу горутин и ждёт их завершения.
// Возвращает ErrDeliveriesClosed, когда брокер закрывает канал.
func (c *Consumer) runPool(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range deliveries {
				c.handleDelivery(ctx, raw)
			}
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ErrDeliveriesClosed
}

// handleDelivery передаёт сообщение обработчику, защищаясь от паник.
func (c *Consumer) handleDelivery(ctx context.Context, raw amqp.Delivery) {
	d := &Delivery{
		Body: raw.Body,
		Raw:  raw,
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			// Обработчик упал — сообщение в DLQ
			d.Nack(false)
		}
	}()

	c.logger.Debug("received message", "message_id", raw.MessageId)

	c.handler(ctx, d)
}

// Stop останавливает consumer.
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
}
