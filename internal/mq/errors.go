package mq

import "errors"

// Ошибки инфраструктуры очередей.
var (
	// ErrNoChannel — канал недоступен (соединение в процессе reconnect).
	ErrNoChannel = errors.New("no amqp channel available")

	// ErrPublish — публикация не удалась. Возвращается producer'ом
	// синхронно вызывающему коду; producer сам retry не делает.
	ErrPublish = errors.New("publish failed")

	// ErrDeliveriesClosed — брокер закрыл канал доставки.
	ErrDeliveriesClosed = errors.New("deliveries channel closed")
)
