package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/haple/bazaar/internal/task"
)

// Generator рендерит PDF-отчёты по скомпилированным layout'ам.
//
// Создаётся один раз на старте процесса; после этого только читается,
// конкурентный доступ из worker-горутин безопасен.
type Generator struct {
	layouts map[task.ExportKind]*Layout
}

// NewGenerator компилирует layout'ы всех видов отчётов.
func NewGenerator(logger *slog.Logger) *Generator {
	start := time.Now()
	g := &Generator{layouts: compileLayouts()}
	logger.Info("report layouts compiled",
		"kinds", len(g.layouts),
		"took", time.Since(start),
	)
	return g
}

// Render заполняет layout данными и возвращает PDF-байты.
func (g *Generator) Render(kind task.ExportKind, d *Dataset) ([]byte, error) {
	layout, ok := g.layouts[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoLayout, kind)
	}
	if d.Kind != kind {
		return nil, fmt.Errorf("%w: layout %q, dataset %q", ErrKindMismatch, kind, d.Kind)
	}

	orientation := "P"
	if layout.Landscape {
		orientation = "L"
	}

	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(layout.Title, false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Заголовок документа
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, layout.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated at %s, %d rows", time.Now().Format("2006-01-02 15:04:05"), d.Len()), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Шапка таблицы
	writeHeader(pdf, layout)

	// Строки
	pdf.SetFont("Helvetica", "", 8)
	for i := 0; i < d.Len(); i++ {
		// Повторяем шапку на новой странице
		limit := 270.0
		if layout.Landscape {
			limit = 185.0
		}
		if pdf.GetY() > limit {
			pdf.AddPage()
			writeHeader(pdf, layout)
			pdf.SetFont("Helvetica", "", 8)
		}
		for _, col := range layout.Columns {
			pdf.CellFormat(col.Width, 7, col.Value(d, i), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s report: %w", kind, err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, layout *Layout) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range layout.Columns {
		pdf.CellFormat(col.Width, 8, col.Header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}
