// Bazaar Scheduler — публикует регулярные отчёты по cron-расписанию.
//
// Scheduler рассчитан на единственный экземпляр: повторная установка
// не ломает данные (каждый запуск отчёта получает новый taskId),
// но удваивает количество файлов.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/scheduler"
	"github.com/haple/bazaar/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting bazaar-scheduler")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// RabbitMQ
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

	if err := mq.SetupTopology(mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	publisher := mq.NewPublisher(mqConn, logger)

	// Расписание и владелец регулярных отчётов
	cronExpr := os.Getenv("REPORT_CRON")
	if cronExpr == "" {
		cronExpr = "0 3 * * *" // ежедневно в 03:00
	}
	if err := scheduler.ValidateCronExpr(cronExpr); err != nil {
		logger.Error("invalid REPORT_CRON", "error", err)
		os.Exit(1)
	}

	var ownerID int64
	if v := os.Getenv("REPORT_OWNER_ID"); v != "" {
		ownerID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			logger.Error("invalid REPORT_OWNER_ID", "error", err)
			os.Exit(1)
		}
	}

	sched := scheduler.New(scheduler.Config{
		Publisher: publisher,
		Jobs:      scheduler.DefaultJobs(cronExpr, ownerID),
		Logger:    logger,
	})

	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
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

	sched.Stop()
	logger.Info("bazaar-scheduler stopped")
}
