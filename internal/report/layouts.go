package report

import (
	"fmt"
	"strconv"

	"github.com/haple/bazaar/internal/task"
)

const timeLayout = "2006-01-02 15:04"

// compileLayouts собирает макеты всех известных видов отчётов.
// Вызывается один раз из NewGenerator.
func compileLayouts() map[task.ExportKind]*Layout {
	return map[task.ExportKind]*Layout{
		task.ExportUserPDF:    userLayout(),
		task.ExportProductPDF: productLayout(),
		task.ExportOrderPDF:   orderLayout(),
		task.ExportPaymentPDF: paymentLayout(),
	}
}

func userLayout() *Layout {
	return &Layout{
		Title: "User Report",
		Columns: []Column{
			{"ID", 15, func(d *Dataset, i int) string { return strconv.FormatInt(d.Users[i].ID, 10) }},
			{"First Name", 28, func(d *Dataset, i int) string { return d.Users[i].FirstName }},
			{"Last Name", 28, func(d *Dataset, i int) string { return d.Users[i].LastName }},
			{"Username", 30, func(d *Dataset, i int) string { return d.Users[i].Username }},
			{"Email", 48, func(d *Dataset, i int) string { return d.Users[i].Email }},
			{"Status", 20, func(d *Dataset, i int) string { return d.Users[i].Status }},
			{"Role", 20, func(d *Dataset, i int) string { return d.Users[i].RoleName }},
		},
	}
}

func productLayout() *Layout {
	return &Layout{
		Title: "Product Report",
		Columns: []Column{
			{"ID", 15, func(d *Dataset, i int) string { return strconv.FormatInt(d.Products[i].ID, 10) }},
			{"Name", 45, func(d *Dataset, i int) string { return d.Products[i].Name }},
			{"Category", 30, func(d *Dataset, i int) string { return d.Products[i].CategoryName }},
			{"Price", 25, func(d *Dataset, i int) string { return fmt.Sprintf("%.2f", d.Products[i].Price) }},
			{"Quantity", 20, func(d *Dataset, i int) string { return strconv.Itoa(d.Products[i].Quantity) }},
			{"Created", 35, func(d *Dataset, i int) string { return d.Products[i].CreatedAt.Format(timeLayout) }},
		},
	}
}

func orderLayout() *Layout {
	return &Layout{
		Title:     "Order Report",
		Landscape: true,
		Columns: []Column{
			{"ID", 12, func(d *Dataset, i int) string { return strconv.FormatInt(d.Orders[i].ID, 10) }},
			{"Order #", 35, func(d *Dataset, i int) string { return d.Orders[i].OrderNumber }},
			{"Customer", 28, func(d *Dataset, i int) string { return d.Orders[i].Username }},
			{"Receiver", 30, func(d *Dataset, i int) string { return d.Orders[i].ReceiverName }},
			{"Phone", 25, func(d *Dataset, i int) string { return d.Orders[i].PhoneNumber }},
			{"Address", 55, func(d *Dataset, i int) string { return d.Orders[i].ShippingAddress }},
			{"Total", 22, func(d *Dataset, i int) string { return fmt.Sprintf("%.2f", d.Orders[i].TotalAmount) }},
			{"Status", 22, func(d *Dataset, i int) string { return d.Orders[i].Status }},
			{"Payment", 22, func(d *Dataset, i int) string { return d.Orders[i].PaymentStatus }},
			{"Created", 26, func(d *Dataset, i int) string { return d.Orders[i].CreatedAt.Format(timeLayout) }},
		},
	}
}

func paymentLayout() *Layout {
	return &Layout{
		Title:     "Payment Report",
		Landscape: true,
		Columns: []Column{
			{"ID", 12, func(d *Dataset, i int) string { return strconv.FormatInt(d.Payments[i].ID, 10) }},
			{"Order #", 35, func(d *Dataset, i int) string { return d.Payments[i].OrderNumber }},
			{"Customer", 30, func(d *Dataset, i int) string { return d.Payments[i].Username }},
			{"Method", 28, func(d *Dataset, i int) string { return d.Payments[i].PaymentMethod }},
			{"Amount", 25, func(d *Dataset, i int) string { return fmt.Sprintf("%.2f", d.Payments[i].Amount) }},
			{"Status", 25, func(d *Dataset, i int) string { return d.Payments[i].Status }},
			{"Transaction", 45, func(d *Dataset, i int) string { return d.Payments[i].TransactionID }},
			{"Paid At", 28, func(d *Dataset, i int) string { return d.Payments[i].PaymentDate.Format(timeLayout) }},
		},
	}
}
