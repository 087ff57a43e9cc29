package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

var pdfWidths = []float64{32, 22, 30, 44, 20, 20, 22}

// PDF lays the report out as an A4 table with a summary above it.
func PDF(r *Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(5, 10, 5)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, r.Title, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Date Range: %s to %s", r.From.Format("2006-01-02"), r.To.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Sales: %d", r.SaleCount), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Revenue: %s", r.Revenue.StringFixed(2)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	for i, c := range columns {
		pdf.CellFormat(pdfWidths[i], 8, c, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range r.Rows {
		sale := row.SaleID
		if len(sale) > 8 {
			sale = sale[:8]
		}
		cells := []struct {
			text  string
			align string
		}{
			{row.Date.Format(dateLayout), "L"},
			{sale, "L"},
			{row.Cashier, "L"},
			{row.Product, "L"},
			{row.Quantity.String(), "R"},
			{row.UnitPrice.StringFixed(2), "R"},
			{row.Subtotal.StringFixed(2), "R"},
		}
		for i, c := range cells {
			pdf.CellFormat(pdfWidths[i], 7, c.text, "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
