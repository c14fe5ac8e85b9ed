package task

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportTask — задача генерации PDF-отчёта.
//
// Worker получает датасет из БД, рендерит PDF по предкомпилированному
// layout'у и сохраняет файл под каталогом экспорта.
type ExportTask struct {
	// TaskID — стабильный идентификатор задачи (см. EmailTask.TaskID).
	TaskID uuid.UUID `json:"taskId"`

	// UserID — пользователь, запросивший отчёт.
	UserID int64 `json:"userId"`

	// ExportType — вид отчёта.
	ExportType ExportKind `json:"exportType"`

	// FileName — имя выходного файла. Используется как leaf-компонент
	// пути под каталогом экспорта, без подкаталогов.
	FileName string `json:"fileName"`

	// Parameters — фильтры датасета. Семантика зависит от ExportType:
	//   USER_PDF    — username
	//   PRODUCT_PDF — productName
	//   ORDER_PDF   — orderNumber, username, status
	//   PAYMENT_PDF — status
	Parameters map[string]string `json:"parameters,omitempty"`

	// RequestedAt — время постановки в очередь.
	RequestedAt time.Time `json:"requestedAt"`

	// RetryCount — номер попытки, начиная с 0.
	RetryCount int `json:"retryCount"`
}

// Validate проверяет задачу. Ошибка означает permanent failure.
func (t *ExportTask) Validate() error {
	if !t.ExportType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownExportKind, t.ExportType)
	}
	if err := ValidateFileName(t.FileName); err != nil {
		return err
	}
	return nil
}

// ValidateFileName проверяет, что имя файла — одиночный leaf-компонент.
// Имя приходит от вызывающего кода как есть, поэтому path traversal
// отсекается здесь и повторно в FileSink.
func ValidateFileName(name string) error {
	if name == "" {
		return ErrBadFileName
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrBadFileName, name)
	}
	return nil
}

// DefaultFileName возвращает детерминированное имя файла по виду отчёта
// и идентификатору задачи. Повторная доставка той же задачи перезапишет
// тот же файл, а не создаст новый.
func DefaultFileName(kind ExportKind, id uuid.UUID) string {
	return kind.FilePrefix() + id.String() + ".pdf"
}

// CanRetry возвращает true, если лимит попыток ещё не исчерпан.
func (t *ExportTask) CanRetry() bool {
	return t.RetryCount < MaxRetry
}

// NextAttempt возвращает копию задачи для переиздания с retryCount+1.
func (t *ExportTask) NextAttempt() *ExportTask {
	next := *t
	next.RetryCount = t.RetryCount + 1
	return &next
}
