package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates — скомпилированные HTML-шаблоны писем.
//
// Компилируются один раз на старте процесса; после init только
// читаются, конкурентный доступ из worker-горутин безопасен.
type Templates struct {
	set *template.Template
}

// LoadTemplates компилирует все встроенные шаблоны.
// Ошибка компиляции фатальна — процесс не должен стартовать
// с битым шаблоном.
func LoadTemplates(logger *slog.Logger) (*Templates, error) {
	set, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	logger.Info("mail templates compiled", "count", len(set.Templates()))
	return &Templates{set: set}, nil
}

// Render подставляет переменные в шаблон и возвращает HTML.
func (t *Templates) Render(name string, variables map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name+".html", variables); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}

// Has возвращает true, если шаблон с таким именем скомпилирован.
func (t *Templates) Has(name string) bool {
	return t.set.Lookup(name+".html") != nil
}
