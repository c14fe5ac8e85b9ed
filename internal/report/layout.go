package report

import "errors"

// Ошибки рендеринга.
var (
	// ErrNoLayout — для вида отчёта нет скомпилированного layout'а.
	ErrNoLayout = errors.New("no layout compiled for export kind")

	// ErrKindMismatch — датасет не соответствует виду отчёта.
	ErrKindMismatch = errors.New("dataset kind does not match layout")
)

// Column — колонка таблицы отчёта.
type Column struct {
	// Header — заголовок колонки.
	Header string

	// Width — ширина в миллиметрах.
	Width float64

	// Value извлекает строковое значение ячейки из i-й строки датасета.
	Value func(d *Dataset, i int) string
}

// Layout — скомпилированный макет одного вида отчёта.
// Неизменяем после NewGenerator; читается конкурентно без блокировок.
type Layout struct {
	// Title — заголовок документа.
	Title string

	// Landscape — альбомная ориентация (для широких таблиц).
	Landscape bool

	// Columns — колонки таблицы в порядке вывода.
	Columns []Column
}
