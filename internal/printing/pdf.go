// Package printing renders invoices as PDF documents for download.
package printing

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/pos/internal/domain/billing"
)

// RenderInvoice produces the invoice PDF: store header, invoice id,
// customer block, line item table, GST and total rows.
func RenderInvoice(inv *billing.Invoice, storeName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 10, "Inv: "+inv.ID, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.CellFormat(100, 10, "Customer: "+inv.CustomerName, "", 1, "L", false, 0, "")
	pdf.CellFormat(100, 10, "Mobile: "+inv.CustomerMobile, "", 1, "L", false, 0, "")
	pdf.CellFormat(100, 10, "Payment: "+string(inv.PaymentMode), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 10, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 10, "Qty", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, "Price", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, "Total", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range inv.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		pdf.CellFormat(80, 10, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 10, fmt.Sprintf("%d", item.Quantity), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 10, item.UnitPrice.StringFixed(2), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 10, lineTotal.StringFixed(2), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.CellFormat(150, 10, "GST", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, inv.GSTAmount.StringFixed(2), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 10, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, inv.Total.StringFixed(2), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render pdf")
	}
	return buf.Bytes(), nil
}

// InvoiceFilename returns the download filename for an invoice PDF. The
// customer name is reduced to letters, digits and underscores so the value
// is safe inside a quoted Content-Disposition header.
func InvoiceFilename(inv *billing.Invoice) string {
	name := filenamePart(inv.CustomerName)
	return fmt.Sprintf("%s_%s_%d.pdf", name, inv.CustomerMobile, inv.CreatedAt.Unix())
}

func filenamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "customer"
	}
	return b.String()
}
