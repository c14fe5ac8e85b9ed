// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings, TTL, DLX
//   - publisher.go  — постановка задач в очередь (producer)
//   - consumer.go   — потребление сообщений с ручным ack/nack
//
// Классы задач:
//   - email  — транзакционные письма
//   - export — генерация PDF-отчётов
//
// Exchanges:
//   - email.exchange  — письма
//   - export.exchange — отчёты
//   - dlx.exchange    — dead letter exchange (общий для обоих классов)
//
// Сообщение, не потреблённое в течение TTL очереди, брокер сам
// перекладывает в dlq.queue через dlx.exchange — без участия consumer'а.
package mq
