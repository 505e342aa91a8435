package documents

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/zenjaura/marketplace/internal/models"
)

func itemLabel(item models.OrderItem) string {
	label := fmt.Sprintf("%s (%s)", item.Title, item.Kind)

	if c := item.Customization; c != nil {
		label += fmt.Sprintf(" - %d copies, %d pages", c.PrintedCopies, c.TotalPages)
	}

	return label
}

// InvoicePDF renders an A4 invoice listing every order line and the total.
func InvoicePDF(order *models.Order, customer *models.User) ([]byte, error) {

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+order.OrderNumber, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Zenjaura")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, "Invoice for order "+order.OrderNumber)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+order.CreatedAt.Format("2006-01-02"))
	pdf.Ln(6)

	if customer != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Billed to: %s <%s>", customer.Name, customer.Email))
		pdf.Ln(6)
	}

	pdf.Cell(0, 6, fmt.Sprintf("Status: %s / payment %s", order.Status, order.PaymentStatus))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(100, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Unit price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)

	for _, item := range order.Items {
		pdf.CellFormat(100, 8, itemLabel(item), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, item.Subtotal().StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(155, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", order.TotalAmount), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	return buf.Bytes(), nil
}
