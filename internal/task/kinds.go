package task

// MaxRetry — максимальное число повторных попыток обработки задачи.
// Задача с retryCount >= MaxRetry после очередной ошибки уходит в DLQ.
const MaxRetry = 3

// EmailKind — дискриминатор письма.
// Определяет шаблон и тему: SIMPLE — plain text без шаблона,
// TEMPLATE — произвольный шаблон по имени, остальные — семантические
// виды с фиксированным шаблоном.
type EmailKind string

const (
	EmailSimple            EmailKind = "SIMPLE"
	EmailTemplate          EmailKind = "TEMPLATE"
	EmailOrderConfirmation EmailKind = "ORDER_CONFIRMATION"
	EmailOrderCancelled    EmailKind = "ORDER_CANCELLED"
	EmailOrderShipped      EmailKind = "ORDER_SHIPPED"
	EmailOrderDelivered    EmailKind = "ORDER_DELIVERED"
	EmailPaymentSuccess    EmailKind = "PAYMENT_SUCCESS"
	EmailPaymentFailed     EmailKind = "PAYMENT_FAILED"
	EmailOTP               EmailKind = "OTP"
	EmailExportReady       EmailKind = "EXPORT_READY"
)

// Valid возвращает true, если значение дискриминатора известно.
func (k EmailKind) Valid() bool {
	switch k {
	case EmailSimple, EmailTemplate, EmailOrderConfirmation, EmailOrderCancelled,
		EmailOrderShipped, EmailOrderDelivered, EmailPaymentSuccess,
		EmailPaymentFailed, EmailOTP, EmailExportReady:
		return true
	default:
		return false
	}
}

// Template возвращает имя HTML-шаблона для семантических видов писем.
// Для SIMPLE и TEMPLATE шаблон не фиксирован — возвращается "".
func (k EmailKind) Template() string {
	switch k {
	case EmailOrderConfirmation:
		return "order-confirmation"
	case EmailOrderCancelled:
		return "order-cancelled"
	case EmailOrderShipped, EmailOrderDelivered:
		return "order-status-update"
	case EmailPaymentSuccess:
		return "payment-success"
	case EmailPaymentFailed:
		return "payment-failed"
	case EmailOTP:
		return "otp"
	case EmailExportReady:
		return "export-ready"
	default:
		return ""
	}
}

// ExportKind — вид экспортируемого отчёта.
type ExportKind string

const (
	ExportUserPDF    ExportKind = "USER_PDF"
	ExportProductPDF ExportKind = "PRODUCT_PDF"
	ExportOrderPDF   ExportKind = "ORDER_PDF"
	ExportPaymentPDF ExportKind = "PAYMENT_PDF"
)

// ExportKinds — все известные виды отчётов, в порядке объявления.
// Используется при компиляции layout'ов на старте.
var ExportKinds = []ExportKind{ExportUserPDF, ExportProductPDF, ExportOrderPDF, ExportPaymentPDF}

// Valid возвращает true, если вид отчёта известен.
// Неизвестный вид — permanent failure, без retry.
func (k ExportKind) Valid() bool {
	switch k {
	case ExportUserPDF, ExportProductPDF, ExportOrderPDF, ExportPaymentPDF:
		return true
	default:
		return false
	}
}

// FilePrefix возвращает префикс имени файла отчёта по умолчанию.
func (k ExportKind) FilePrefix() string {
	switch k {
	case ExportUserPDF:
		return "users_report_"
	case ExportProductPDF:
		return "products_report_"
	case ExportOrderPDF:
		return "orders_report_"
	case ExportPaymentPDF:
		return "payments_report_"
	default:
		return "report_"
	}
}
