// Package mail отправляет транзакционные письма через SMTP.
//
// Структура:
//   - templates.go — HTML-шаблоны писем, компилируются один раз на старте
//   - smtp.go      — SMTP-клиент (wneessen/go-mail)
//   - guard.go     — дедупликация отправок при повторной доставке задач
//
// Доставка задач at-least-once, поэтому одно и то же письмо может
// прийти worker'у дважды. SendGuard по taskId отсеивает повторную
// отправку уже ушедшего письма.
package mail
