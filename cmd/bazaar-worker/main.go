// Bazaar Worker — обрабатывает асинхронные задачи.
//
// Worker:
//   - Получает задачи из RabbitMQ (email.queue, export.queue)
//   - Отправляет письма через SMTP, рендерит PDF-отчёты
//   - Реализует retry с republish и backoff
//   - Пересылает исчерпавшие попытки сообщения в DLQ
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/haple/bazaar/internal/mail"
	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/report"
	"github.com/haple/bazaar/internal/repo"
	"github.com/haple/bazaar/internal/sink"
	"github.com/haple/bazaar/internal/telemetry"
	"github.com/haple/bazaar/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting bazaar-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// RabbitMQ. Без брокера worker бесполезен, поэтому ошибка фатальна.
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	// Топология (exchanges, queues, TTL, DLX). Ошибка объявления —
	// ошибка конфигурации, продолжать нельзя.
	if err := mq.SetupTopology(mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	publisher := mq.NewPublisher(mqConn, logger)

	// SMTP
	mailer, err := mail.NewSMTPMailer(mail.SMTPConfigFromEnv(), logger)
	if err != nil {
		logger.Error("failed to configure SMTP mailer", "error", err)
		os.Exit(1)
	}

	// HTML-шаблоны писем компилируются один раз при старте.
	templates, err := mail.LoadTemplates(logger)
	if err != nil {
		logger.Error("failed to load mail templates", "error", err)
		os.Exit(1)
	}

	// Дедупликация отправки через Redis (опционально)
	var guard worker.SendGuard
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		guard = mail.NewRedisGuard(redis.NewClient(opt))
		logger.Info("redis send-guard enabled")
	}

	// PDF-генератор с предкомпилированными layout'ами
	generator := report.NewGenerator(logger)

	// Каталог экспорта
	exportDir := os.Getenv("EXPORT_DIR")
	fileSink, err := sink.NewFileSink(exportDir, logger)
	if err != nil {
		logger.Error("failed to prepare export directory", "error", err)
		os.Exit(1)
	}

	// Создаём worker
	w := worker.New(worker.Config{
		Conn:         mqConn,
		Publisher:    publisher,
		Mailer:       mailer,
		Templates:    templates,
		Guard:        guard,
		Renderer:     generator,
		DataSource:   repo.NewExportRepo(pool),
		Sink:         fileSink,
		NotifyExport: os.Getenv("EXPORT_NOTIFY") != "false",
		Logger:       logger,
	})

	// Запускаем worker
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем worker
	w.Stop()
	logger.Info("bazaar-worker stopped")
}
