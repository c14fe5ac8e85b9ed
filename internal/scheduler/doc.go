// Package scheduler реализует периодическую постановку отчётов в очередь.
//
// Scheduler по cron-расписанию публикует задачи экспорта в RabbitMQ —
// регулярные отчёты (пользователи, товары, заказы, платежи), которые
// воркер превращает в PDF-файлы.
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Start, Stop, jobs)
//   - cron.go      — парсинг и валидация cron-выражений
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Publisher: publisher,
//	    Jobs:      scheduler.DefaultJobs("0 3 * * *"),
//	    Logger:    logger,
//	})
//
//	if err := sched.Start(); err != nil {
//	    logger.Error("scheduler start failed", "error", err)
//	}
//	defer sched.Stop()
//
// Scheduler рассчитан на единственный экземпляр. Повторная публикация
// одного и того же отчёта безопасна: каждый запуск получает новый taskId
// и отдельный файл.
package scheduler
