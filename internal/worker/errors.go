package worker

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Ошибки воркера.
var (
	// ErrMalformedTask — тело сообщения не парсится. Permanent:
	// повторная доставка битый JSON не исправит.
	ErrMalformedTask = errors.New("malformed task message")

	// ErrTemplateRender — HTML-шаблон письма не отрендерился. Permanent:
	// шаблоны компилируются на старте, retry не поможет.
	ErrTemplateRender = errors.New("template render failed")

	// ErrRetryExhausted — лимит попыток исчерпан, задача уходит в DLQ.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// unmarshalTask разбирает тело сообщения в задачу.
func unmarshalTask(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedTask, err)
	}
	return nil
}
