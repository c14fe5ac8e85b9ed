// Package cli реализует инструмент командной строки Bazaar.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Bazaar API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для постановки писем и экспортов в очередь
// и для работы с dead-letter очередью.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Bazaar API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ErrorResponse) и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	resp, err := client.EnqueueExport(req)
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: bazaar dlq list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - email:  send
//   - export: start
//   - dlq:    list, replay
//
// Каждая группа создаётся через фабричную функцию (NewEmailCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
