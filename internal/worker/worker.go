package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/haple/bazaar/internal/mq"
)

// Default configuration values.
const (
	defaultEmailWorkers  = 4
	defaultExportWorkers = 2
	defaultCallTimeout   = 30 * time.Second
	defaultBackoffBase   = time.Second
	defaultBackoffMax    = 30 * time.Second
)

// Worker потребляет обе очереди задач и ведёт их до терминального исхода.
type Worker struct {
	conn      *mq.Connection
	publisher Publisher

	mailer    Mailer
	templates TemplateSet
	guard     SendGuard

	renderer Renderer
	source   DataSource
	sink     Sink

	emailWorkers  int
	exportWorkers int
	callTimeout   time.Duration
	backoffBase   time.Duration
	backoffMax    time.Duration
	notifyExport  bool

	logger *slog.Logger

	emailConsumer  *mq.Consumer
	exportConsumer *mq.Consumer
	cancelFunc     context.CancelFunc
	wg             sync.WaitGroup
}

// Config — конфигурация Worker.
type Config struct {
	// MQ
	Conn      *mq.Connection
	Publisher Publisher

	// Email-участники
	Mailer    Mailer
	Templates TemplateSet
	Guard     SendGuard // опционально; nil — без дедупликации

	// Export-участники
	Renderer   Renderer
	DataSource DataSource
	Sink       Sink

	// Размеры пулов listener-горутин (default: 4 email, 2 export)
	EmailWorkers  int
	ExportWorkers int

	// CallTimeout — дедлайн одного внешнего вызова (default: 30s)
	CallTimeout time.Duration

	// NotifyExport — слать ли follow-up письмо о готовом отчёте
	NotifyExport bool

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	emailWorkers := cfg.EmailWorkers
	if emailWorkers <= 0 {
		emailWorkers = defaultEmailWorkers
	}

	exportWorkers := cfg.ExportWorkers
	if exportWorkers <= 0 {
		exportWorkers = defaultExportWorkers
	}

	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	guard := cfg.Guard
	if guard == nil {
		guard = noopGuard{}
	}

	return &Worker{
		conn:          cfg.Conn,
		publisher:     cfg.Publisher,
		mailer:        cfg.Mailer,
		templates:     cfg.Templates,
		guard:         guard,
		renderer:      cfg.Renderer,
		source:        cfg.DataSource,
		sink:          cfg.Sink,
		emailWorkers:  emailWorkers,
		exportWorkers: exportWorkers,
		callTimeout:   callTimeout,
		backoffBase:   defaultBackoffBase,
		backoffMax:    defaultBackoffMax,
		notifyExport:  cfg.NotifyExport,
		logger:        logger,
	}
}

// Start запускает потребление обеих очередей.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"email_workers", w.emailWorkers,
		"export_workers", w.exportWorkers,
		"call_timeout", w.callTimeout,
		"notify_export", w.notifyExport,
	)

	w.emailConsumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue:   mq.QueueEmail,
		Handler: w.handleEmailDelivery,
		Workers: w.emailWorkers,
	})

	w.exportConsumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue:   mq.QueueExport,
		Handler: w.handleExportDelivery,
		Workers: w.exportWorkers,
	})

	for _, c := range []*mq.Consumer{w.emailConsumer, w.exportConsumer} {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("consumer error", "error", err)
			}
		}()
	}

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker и ждёт завершения listener-горутин.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	if w.emailConsumer != nil {
		w.emailConsumer.Stop()
	}
	if w.exportConsumer != nil {
		w.exportConsumer.Stop()
	}

	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// withCallTimeout возвращает контекст с дедлайном одного внешнего вызова.
// Зависший SMTP или БД не должны занимать listener бесконечно.
func (w *Worker) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.callTimeout)
}

// noopGuard — guard по умолчанию, когда дедупликация не сконфигурирована.
type noopGuard struct{}

func (noopGuard) AlreadySent(context.Context, string) (bool, error) { return false, nil }
func (noopGuard) MarkSent(context.Context, string) error            { return nil }
