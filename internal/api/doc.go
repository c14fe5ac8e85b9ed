// Package api содержит HTTP API сервер конвейера задач.
//
// Структура:
//   - handler.go         — Handler с DI (publisher, dlq, logger)
//   - routes.go          — регистрация маршрутов
//   - middleware.go      — middleware (logging, recovery)
//   - response.go        — унифицированные JSON-ответы и обработка ошибок
//   - dto.go             — Data Transfer Objects (request/response)
//   - enqueue_handler.go — постановка задач в очередь
//   - dlq_handler.go     — просмотр и replay dead-letter очереди
//
// API — producer-сторона конвейера: endpoint'ы только ставят задачи
// в очередь и возвращают 202; результат обработки асинхронный.
package api
