package report

import (
	"time"

	"github.com/haple/bazaar/internal/task"
)

// Dataset — строки для одного отчёта. Заполнено ровно одно поле,
// соответствующее Kind.
type Dataset struct {
	Kind task.ExportKind

	Users    []UserRow
	Products []ProductRow
	Orders   []OrderRow
	Payments []PaymentRow
}

// Len возвращает число строк датасета.
func (d *Dataset) Len() int {
	switch d.Kind {
	case task.ExportUserPDF:
		return len(d.Users)
	case task.ExportProductPDF:
		return len(d.Products)
	case task.ExportOrderPDF:
		return len(d.Orders)
	case task.ExportPaymentPDF:
		return len(d.Payments)
	default:
		return 0
	}
}

// UserRow — строка отчёта по пользователям.
type UserRow struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Email     string
	Status    string
	RoleName  string
}

// ProductRow — строка отчёта по товарам.
type ProductRow struct {
	ID           int64
	Name         string
	Description  string
	Price        float64
	Quantity     int
	CategoryName string
	CreatedAt    time.Time
}

// OrderRow — строка отчёта по заказам.
type OrderRow struct {
	ID              int64
	OrderNumber     string
	Username        string
	ReceiverName    string
	PhoneNumber     string
	ShippingAddress string
	TotalAmount     float64
	Status          string
	PaymentMethod   string
	PaymentStatus   string
	CreatedAt       time.Time
	Note            string
}

// PaymentRow — строка отчёта по платежам.
type PaymentRow struct {
	ID            int64
	OrderID       int64
	OrderNumber   string
	Username      string
	PaymentMethod string
	Amount        float64
	Status        string
	TransactionID string
	PaymentDate   time.Time
}
