// Package sink сохраняет сгенерированные отчёты.
package sink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haple/bazaar/internal/task"
)

// FileSink пишет байты отчёта на локальный диск под корневым каталогом
// экспорта. Имя файла — всегда одиночный leaf-компонент; выход за
// пределы корня невозможен.
type FileSink struct {
	root   string
	logger *slog.Logger
}

// NewFileSink создаёт sink и каталог экспорта, если его нет.
func NewFileSink(root string, logger *slog.Logger) (*FileSink, error) {
	if root == "" {
		root = "exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir %s: %w", root, err)
	}
	return &FileSink{root: root, logger: logger}, nil
}

// Write сохраняет байты под root/<fileName>.
// Запись идемпотентна: повторная доставка той же задачи перезаписывает
// тот же файл.
func (s *FileSink) Write(fileName string, data []byte) error {
	if err := task.ValidateFileName(fileName); err != nil {
		return err
	}

	path := filepath.Join(s.root, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export file %s: %w", path, err)
	}

	s.logger.Info("export file written", "path", path, "bytes", len(data))
	return nil
}

// Path возвращает полный путь файла под корнем экспорта.
func (s *FileSink) Path(fileName string) string {
	return filepath.Join(s.root, fileName)
}
