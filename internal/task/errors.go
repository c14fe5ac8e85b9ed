package task

import "errors"

// Ошибки валидации задач. Все они означают permanent failure:
// повторная доставка такую задачу не исправит.
var (
	// ErrNoRecipients — список получателей письма пуст.
	ErrNoRecipients = errors.New("email task has no recipients")

	// ErrNoBody — у письма нет ни content, ни templateName.
	ErrNoBody = errors.New("email task has neither content nor template")

	// ErrUnknownEmailKind — неизвестный emailType.
	ErrUnknownEmailKind = errors.New("unknown email kind")

	// ErrUnknownExportKind — неизвестный exportType.
	ErrUnknownExportKind = errors.New("unknown export kind")

	// ErrBadFileName — имя файла пустое или выходит за пределы каталога экспорта.
	ErrBadFileName = errors.New("invalid export file name")
)
