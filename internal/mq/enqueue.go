package mq

import (
	"context"
	"fmt"

	"github.com/haple/bazaar/internal/task"
)

// Типизированные конструкторы задач поверх EnqueueEmail/EnqueueExport.
// Бизнес-код вызывает их вместо ручной сборки задач.

// EnqueueSimpleEmail ставит в очередь plain-text письмо.
func (p *Publisher) EnqueueSimpleEmail(ctx context.Context, to []string, subject, content string) error {
	return p.EnqueueEmail(ctx, &task.EmailTask{
		To:        to,
		Subject:   subject,
		Content:   content,
		EmailType: task.EmailSimple,
	})
}

// EnqueueTemplateEmail ставит в очередь письмо по произвольному шаблону.
func (p *Publisher) EnqueueTemplateEmail(ctx context.Context, to []string, subject, templateName string, variables map[string]any) error {
	return p.EnqueueEmail(ctx, &task.EmailTask{
		To:           to,
		Subject:      subject,
		TemplateName: templateName,
		Variables:    variables,
		EmailType:    task.EmailTemplate,
	})
}

// EnqueueOrderConfirmation ставит в очередь письмо-подтверждение заказа.
// orderData должен содержать orderNumber.
func (p *Publisher) EnqueueOrderConfirmation(ctx context.Context, to string, orderData map[string]any) error {
	return p.EnqueueEmail(ctx, &task.EmailTask{
		To:        []string{to},
		Subject:   fmt.Sprintf("Order confirmation - %v", orderData["orderNumber"]),
		Variables: orderData,
		EmailType: task.EmailOrderConfirmation,
	})
}

// EnqueuePaymentSuccess ставит в очередь письмо об успешной оплате.
func (p *Publisher) EnqueuePaymentSuccess(ctx context.Context, to string, paymentData map[string]any) error {
	return p.EnqueueEmail(ctx, &task.EmailTask{
		To:        []string{to},
		Subject:   fmt.Sprintf("Payment received - %v", paymentData["orderNumber"]),
		Variables: paymentData,
		EmailType: task.EmailPaymentSuccess,
	})
}

// EnqueueOrderCancelled ставит в очередь письмо об отмене заказа.
func (p *Publisher) EnqueueOrderCancelled(ctx context.Context, to string, orderData map[string]any) error {
	return p.EnqueueEmail(ctx, &task.EmailTask{
		To:        []string{to},
		Subject:   fmt.Sprintf("Order cancelled - %v", orderData["orderNumber"]),
		Variables: orderData,
		EmailType: task.EmailOrderCancelled,
	})
}

// EnqueueOrderStatusUpdate ставит в очередь письмо об изменении статуса заказа.
func (p *Publisher) EnqueueOrderStatusUpdate(ctx context.Context, to string, orderData map[string]any) error {
	return p.EnqueueEmail(ctx, &task.EmailTask{
		To:        []string{to},
		Subject:   fmt.Sprintf("Order update - %v", orderData["orderNumber"]),
		Variables: orderData,
		EmailType: task.EmailOrderShipped,
	})
}

// EnqueueExportReady ставит в очередь уведомление о готовности отчёта.
// Вызывается worker'ом после успешной записи файла (опциональный шаг).
func (p *Publisher) EnqueueExportReady(ctx context.Context, to string, fileName string) error {
	return p.EnqueueEmail(ctx, &task.EmailTask{
		To:        []string{to},
		Subject:   "Your report is ready",
		Variables: map[string]any{"fileName": fileName},
		EmailType: task.EmailExportReady,
	})
}

// EnqueueUserReport ставит в очередь экспорт отчёта по пользователям.
func (p *Publisher) EnqueueUserReport(ctx context.Context, userID int64, username string) error {
	return p.EnqueueExport(ctx, &task.ExportTask{
		UserID:     userID,
		ExportType: task.ExportUserPDF,
		Parameters: map[string]string{"username": username},
	})
}

// EnqueueProductReport ставит в очередь экспорт отчёта по товарам.
func (p *Publisher) EnqueueProductReport(ctx context.Context, userID int64, productName string) error {
	return p.EnqueueExport(ctx, &task.ExportTask{
		UserID:     userID,
		ExportType: task.ExportProductPDF,
		Parameters: map[string]string{"productName": productName},
	})
}

// EnqueueOrderReport ставит в очередь экспорт отчёта по заказам.
func (p *Publisher) EnqueueOrderReport(ctx context.Context, userID int64, orderNumber, username, status, fileName string) error {
	return p.EnqueueExport(ctx, &task.ExportTask{
		UserID:     userID,
		ExportType: task.ExportOrderPDF,
		FileName:   fileName,
		Parameters: map[string]string{
			"orderNumber": orderNumber,
			"username":    username,
			"status":      status,
		},
	})
}

// EnqueuePaymentReport ставит в очередь экспорт отчёта по платежам.
func (p *Publisher) EnqueuePaymentReport(ctx context.Context, userID int64, status string) error {
	return p.EnqueueExport(ctx, &task.ExportTask{
		UserID:     userID,
		ExportType: task.ExportPaymentPDF,
		Parameters: map[string]string{"status": status},
	})
}
