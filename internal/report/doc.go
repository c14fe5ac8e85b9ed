// Package report рендерит PDF-отчёты по датасетам из БД.
//
// Layout каждого вида отчёта (колонки, ширины, заголовок) компилируется
// один раз при создании Generator'а на старте процесса. После init
// Generator неизменяем и безопасно разделяется всеми worker-горутинами
// без блокировок.
//
// Структура:
//   - dataset.go   — типизированные строки датасетов по видам отчётов
//   - layout.go    — скомпилированный layout и его колонки
//   - layouts.go   — декларации layout'ов для каждого вида
//   - generator.go — заполнение layout'а данными и вывод PDF-байтов
package report
