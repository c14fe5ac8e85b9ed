package worker

import (
	"context"

	"github.com/haple/bazaar/internal/report"
	"github.com/haple/bazaar/internal/task"
)

// Внешние участники обработки. Worker принимает интерфейсы,
// конкретные реализации живут в mail, report, repo и sink.

// Mailer отправляет письмо. Ошибка считается transient.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string, isHTML bool) error
}

// TemplateSet рендерит HTML-тело письма по скомпилированному шаблону.
type TemplateSet interface {
	Render(name string, variables map[string]any) (string, error)
}

// Renderer рендерит PDF-байты отчёта по предкомпилированному layout'у.
type Renderer interface {
	Render(kind task.ExportKind, d *report.Dataset) ([]byte, error)
}

// DataSource выбирает датасет отчёта и e-mail пользователя.
type DataSource interface {
	Fetch(ctx context.Context, kind task.ExportKind, params map[string]string) (*report.Dataset, error)
	UserEmail(ctx context.Context, userID int64) (string, error)
}

// Sink сохраняет байты отчёта.
type Sink interface {
	Write(fileName string, data []byte) error
}

// Publisher — producer-сторона, используемая worker'ом для переиздания
// задач при retry и для follow-up уведомления о готовом отчёте.
type Publisher interface {
	RepublishEmail(ctx context.Context, t *task.EmailTask) error
	RepublishExport(ctx context.Context, t *task.ExportTask) error
	EnqueueExportReady(ctx context.Context, to string, fileName string) error
}

// SendGuard — дедупликация отправок писем (см. mail.SendGuard).
type SendGuard interface {
	AlreadySent(ctx context.Context, key string) (bool, error)
	MarkSent(ctx context.Context, key string) error
}
