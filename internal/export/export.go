// Package export renders sales reports as spreadsheets and PDFs.
package export

import (
	"time"

	"go-pos-ws/internal/model"

	"github.com/shopspring/decimal"
)

// SaleRow is one sold line, flattened for tabular output.
type SaleRow struct {
	SaleID    string
	Date      time.Time
	Cashier   string
	Product   string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type Report struct {
	Title     string
	From      time.Time
	To        time.Time
	SaleCount int64
	Revenue   decimal.Decimal
	Rows      []SaleRow
}

// RowsFromSales expects User and Items.Product to be preloaded.
func RowsFromSales(sales []model.Sale) []SaleRow {
	var rows []SaleRow
	for i := range sales {
		sale := &sales[i]
		cashier := ""
		if sale.User != nil {
			cashier = sale.User.FullName
		}
		for j := range sale.Items {
			item := &sale.Items[j]
			product := item.ProductID.String()
			if item.Product != nil {
				product = item.Product.Name
			}
			rows = append(rows, SaleRow{
				SaleID:    sale.ID.String(),
				Date:      sale.CreatedAt,
				Cashier:   cashier,
				Product:   product,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  item.Subtotal(),
			})
		}
	}
	return rows
}

var columns = []string{"Date", "Sale", "Cashier", "Product", "Quantity", "Unit Price", "Subtotal"}

const dateLayout = "2006-01-02 15:04"
