package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haple/bazaar/internal/report"
	"github.com/haple/bazaar/internal/task"
)

// ExportRepo — выборки датасетов для отчётов.
// Реализует интерфейс worker.DataSource.
type ExportRepo struct {
	pool *pgxpool.Pool
}

// NewExportRepo создаёт новый ExportRepo.
func NewExportRepo(pool *pgxpool.Pool) *ExportRepo {
	return &ExportRepo{pool: pool}
}

// Fetch возвращает датасет для вида отчёта с фильтрами из параметров задачи.
func (r *ExportRepo) Fetch(ctx context.Context, kind task.ExportKind, params map[string]string) (*report.Dataset, error) {
	switch kind {
	case task.ExportUserPDF:
		return r.fetchUsers(ctx, params["username"])
	case task.ExportProductPDF:
		return r.fetchProducts(ctx, params["productName"])
	case task.ExportOrderPDF:
		return r.fetchOrders(ctx, params["orderNumber"], params["username"], params["status"])
	case task.ExportPaymentPDF:
		return r.fetchPayments(ctx, params["status"])
	default:
		return nil, fmt.Errorf("%w: %q", task.ErrUnknownExportKind, kind)
	}
}

// UserEmail возвращает e-mail пользователя для уведомления о готовом отчёте.
func (r *ExportRepo) UserEmail(ctx context.Context, userID int64) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return "", fmt.Errorf("query user email: %w", err)
	}
	return email, nil
}

// fetchUsers — пользователи с ролями, опциональный фильтр по username.
func (r *ExportRepo) fetchUsers(ctx context.Context, username string) (*report.Dataset, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.username, u.email, u.status,
		       COALESCE(ro.name, '')
		FROM users u
		LEFT JOIN roles ro ON ro.id = u.role_id
		WHERE $1 = '' OR u.username ILIKE '%' || $1 || '%'
		ORDER BY u.id
	`
	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	d := &report.Dataset{Kind: task.ExportUserPDF}
	for rows.Next() {
		var row report.UserRow
		if err := rows.Scan(&row.ID, &row.FirstName, &row.LastName, &row.Username,
			&row.Email, &row.Status, &row.RoleName); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		d.Users = append(d.Users, row)
	}
	return d, rows.Err()
}

// fetchProducts — товары с категориями, опциональный фильтр по имени.
func (r *ExportRepo) fetchProducts(ctx context.Context, productName string) (*report.Dataset, error) {
	query := `
		SELECT p.id, p.name, COALESCE(p.description, ''), p.price, p.quantity,
		       COALESCE(c.name, ''), p.created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE $1 = '' OR p.name ILIKE '%' || $1 || '%'
		ORDER BY p.id
	`
	rows, err := r.pool.Query(ctx, query, productName)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	d := &report.Dataset{Kind: task.ExportProductPDF}
	for rows.Next() {
		var row report.ProductRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.Price,
			&row.Quantity, &row.CategoryName, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		d.Products = append(d.Products, row)
	}
	return d, rows.Err()
}

// fetchOrders — заказы с покупателем и статусом оплаты.
// Все три фильтра опциональны.
func (r *ExportRepo) fetchOrders(ctx context.Context, orderNumber, username, status string) (*report.Dataset, error) {
	query := `
		SELECT o.id, o.order_number, u.username, o.receiver_name, o.phone_number,
		       o.shipping_address, o.total_amount, o.status,
		       COALESCE(p.payment_method, ''), COALESCE(p.status, ''),
		       o.created_at, COALESCE(o.note, '')
		FROM orders o
		JOIN users u ON u.id = o.user_id
		LEFT JOIN payments p ON p.order_id = o.id
		WHERE ($1 = '' OR o.order_number = $1)
		  AND ($2 = '' OR u.username ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR o.status = $3)
		ORDER BY o.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, orderNumber, username, status)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	d := &report.Dataset{Kind: task.ExportOrderPDF}
	for rows.Next() {
		var row report.OrderRow
		if err := rows.Scan(&row.ID, &row.OrderNumber, &row.Username, &row.ReceiverName,
			&row.PhoneNumber, &row.ShippingAddress, &row.TotalAmount, &row.Status,
			&row.PaymentMethod, &row.PaymentStatus, &row.CreatedAt, &row.Note); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		d.Orders = append(d.Orders, row)
	}
	return d, rows.Err()
}

// fetchPayments — платежи с номером заказа и покупателем.
func (r *ExportRepo) fetchPayments(ctx context.Context, status string) (*report.Dataset, error) {
	query := `
		SELECT p.id, p.order_id, o.order_number, u.username, p.payment_method,
		       p.amount, p.status, COALESCE(p.transaction_id, ''), p.payment_date
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		JOIN users u ON u.id = o.user_id
		WHERE $1 = '' OR p.status = $1
		ORDER BY p.payment_date DESC
	`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	d := &report.Dataset{Kind: task.ExportPaymentPDF}
	for rows.Next() {
		var row report.PaymentRow
		if err := rows.Scan(&row.ID, &row.OrderID, &row.OrderNumber, &row.Username,
			&row.PaymentMethod, &row.Amount, &row.Status, &row.TransactionID,
			&row.PaymentDate); err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		d.Payments = append(d.Payments, row)
	}
	return d, rows.Err()
}
