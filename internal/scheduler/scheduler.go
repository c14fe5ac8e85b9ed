package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/haple/bazaar/internal/task"
)

// Publisher — интерфейс постановки экспортов в очередь.
type Publisher interface {
	EnqueueExport(ctx context.Context, t *task.ExportTask) error
}

// Job — периодический отчёт.
type Job struct {
	Name     string          // человекочитаемое имя для логов
	CronExpr string          // стандартное 5-полевое cron-выражение
	Kind     task.ExportKind // тип отчёта
	UserID   int64           // владелец отчёта (получатель уведомления)
	Params   map[string]string
}

// DefaultJobs возвращает полный набор регулярных отчётов
// с одним общим расписанием.
func DefaultJobs(cronExpr string, userID int64) []Job {
	jobs := make([]Job, 0, len(task.ExportKinds))
	for _, kind := range task.ExportKinds {
		jobs = append(jobs, Job{
			Name:     fmt.Sprintf("report-%s", kind),
			CronExpr: cronExpr,
			Kind:     kind,
			UserID:   userID,
		})
	}
	return jobs
}

// Scheduler публикует регулярные отчёты по расписанию.
type Scheduler struct {
	cron      *cron.Cron
	publisher Publisher
	jobs      []Job
	logger    *slog.Logger
	timeout   time.Duration
}

// Config — конфигурация Scheduler.
type Config struct {
	Publisher Publisher
	Jobs      []Job
	Logger    *slog.Logger
	Timeout   time.Duration // таймаут публикации одного задания (default: 10s)
}

// New создаёт новый Scheduler. Задания регистрируются в Start.
func New(cfg Config) *Scheduler {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Scheduler{
		cron:      cron.New(cron.WithParser(cronParser)),
		publisher: cfg.Publisher,
		jobs:      cfg.Jobs,
		logger:    cfg.Logger,
		timeout:   timeout,
	}
}

// Start регистрирует задания и запускает cron.
// Возвращает ошибку, если хотя бы одно cron-выражение невалидно.
func (s *Scheduler) Start() error {
	for i := range s.jobs {
		job := s.jobs[i]

		if _, err := s.cron.AddFunc(job.CronExpr, func() { s.run(job) }); err != nil {
			return fmt.Errorf("register job %q: %w", job.Name, err)
		}

		next, _ := NextRun(job.CronExpr, time.Now())
		s.logger.Info("scheduled report job",
			"job", job.Name,
			"cron", job.CronExpr,
			"next_run", next,
		)
	}

	s.cron.Start()
	return nil
}

// Stop останавливает cron и дожидается завершения текущих заданий.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// run выполняет одно задание: ставит экспорт в очередь.
// Ошибка публикации не фатальна — следующий тик повторит попытку.
func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	t := &task.ExportTask{
		UserID:     job.UserID,
		ExportType: job.Kind,
		Parameters: job.Params,
	}

	if err := s.publisher.EnqueueExport(ctx, t); err != nil {
		s.logger.Error("failed to enqueue scheduled report",
			"job", job.Name,
			"export_type", job.Kind,
			"error", err,
		)
		return
	}

	s.logger.Info("enqueued scheduled report",
		"job", job.Name,
		"export_type", job.Kind,
		"task_id", t.TaskID,
		"file_name", t.FileName,
	)
}
