// Package task описывает единицы отложенной работы (messages),
// публикуемые в RabbitMQ.
//
// Два класса задач:
//   - EmailTask  — отправка транзакционного письма (email.queue)
//   - ExportTask — генерация PDF-отчёта и сохранение на диск (export.queue)
//
// Wire-формат — JSON, имена полей фиксированы и совместимы
// с историческим форматом сообщений (to, emailType, exportType, ...).
// Дискриминаторы (EmailKind, ExportKind) передаются строками.
package task
