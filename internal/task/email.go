package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmailTask — задача отправки письма.
//
// Создаётся Publisher'ом (retryCount=0), доставляется Worker'у через
// email.queue. При transient-ошибке переиздаётся с retryCount+1.
type EmailTask struct {
	// TaskID — стабильный идентификатор задачи.
	// Сохраняется при retry; используется для дедупликации отправок
	// при повторной доставке (at-least-once).
	TaskID uuid.UUID `json:"taskId"`

	// To — получатели. Не может быть пустым.
	To []string `json:"to"`

	// Subject — тема письма.
	Subject string `json:"subject"`

	// Content — plain-text тело (только для SIMPLE).
	Content string `json:"content,omitempty"`

	// TemplateName — имя HTML-шаблона (для TEMPLATE; для семантических
	// видов шаблон определяется EmailType).
	TemplateName string `json:"templateName,omitempty"`

	// Variables — переменные для подстановки в шаблон.
	Variables map[string]any `json:"variables,omitempty"`

	// EmailType — дискриминатор вида письма.
	EmailType EmailKind `json:"emailType"`

	// RequestedAt — время постановки в очередь. Проставляется Publisher'ом.
	RequestedAt time.Time `json:"requestedAt"`

	// RetryCount — номер попытки, начиная с 0.
	RetryCount int `json:"retryCount"`
}

// Validate проверяет задачу. Ошибка означает permanent failure.
func (t *EmailTask) Validate() error {
	if !t.EmailType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEmailKind, t.EmailType)
	}
	if len(t.To) == 0 {
		return ErrNoRecipients
	}
	for _, addr := range t.To {
		if strings.TrimSpace(addr) == "" {
			return ErrNoRecipients
		}
	}
	if t.EmailType == EmailSimple && t.Content == "" {
		return ErrNoBody
	}
	if t.EmailType == EmailTemplate && t.TemplateName == "" {
		return ErrNoBody
	}
	return nil
}

// Templated возвращает true, если письмо рендерится из HTML-шаблона.
func (t *EmailTask) Templated() bool {
	return t.EmailType != EmailSimple
}

// Template возвращает имя шаблона для письма.
func (t *EmailTask) Template() string {
	if t.EmailType == EmailTemplate {
		return t.TemplateName
	}
	return t.EmailType.Template()
}

// CanRetry возвращает true, если лимит попыток ещё не исчерпан.
func (t *EmailTask) CanRetry() bool {
	return t.RetryCount < MaxRetry
}

// NextAttempt возвращает копию задачи для переиздания с retryCount+1.
// TaskID сохраняется — это та же логическая задача.
func (t *EmailTask) NextAttempt() *EmailTask {
	next := *t
	next.RetryCount = t.RetryCount + 1
	return &next
}
