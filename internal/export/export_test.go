package export

import (
	"bytes"
	"testing"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *Report {
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	sales := []model.Sale{{
		ID:          uuid.New(),
		User:        &model.User{FullName: "Dana Cashier"},
		TotalAmount: decimal.NewFromInt(4500),
		CreatedAt:   when,
		Items: []model.SaleItem{{
			ProductID: uuid.New(),
			Product:   &model.Product{Name: "Mineral Water"},
			Quantity:  decimal.NewFromInt(3),
			UnitPrice: decimal.NewFromInt(1500),
		}},
	}}
	return &Report{
		Title:     "Sales Report",
		From:      when.Add(-24 * time.Hour),
		To:        when.Add(24 * time.Hour),
		SaleCount: 1,
		Revenue:   decimal.NewFromInt(4500),
		Rows:      RowsFromSales(sales),
	}
}

func TestRowsFromSales(t *testing.T) {
	r := sampleReport()
	require.Len(t, r.Rows, 1)
	row := r.Rows[0]
	assert.Equal(t, "Dana Cashier", row.Cashier)
	assert.Equal(t, "Mineral Water", row.Product)
	assert.True(t, row.Subtotal.Equal(decimal.NewFromInt(4500)))
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Sales Report", title)

	header, err := f.GetCellValue(sheetName, "D6")
	require.NoError(t, err)
	assert.Equal(t, "Product", header)

	product, err := f.GetCellValue(sheetName, "D7")
	require.NoError(t, err)
	assert.Equal(t, "Mineral Water", product)

	subtotal, err := f.GetCellValue(sheetName, "G7")
	require.NoError(t, err)
	assert.Equal(t, "4500", subtotal)
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestEmptyReport(t *testing.T) {
	r := &Report{Title: "Empty", From: time.Now(), To: time.Now()}

	_, err := XLSX(r)
	assert.NoError(t, err)
	_, err = PDF(r)
	assert.NoError(t, err)
}
