package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sales"

// XLSX writes a single plain sheet: a title block, a header row and one row per sold line.
func XLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(sheetName, "A1", r.Title)
	f.SetCellStyle(sheetName, "A1", "A1", bold)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("%s to %s", r.From.Format("2006-01-02"), r.To.Format("2006-01-02")))
	f.SetCellValue(sheetName, "A3", "Sales")
	f.SetCellValue(sheetName, "B3", r.SaleCount)
	f.SetCellValue(sheetName, "A4", "Revenue")
	f.SetCellValue(sheetName, "B4", r.Revenue.InexactFloat64())

	const headerRow = 6
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", headerRow), &header); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), last, bold)

	for i, row := range r.Rows {
		values := []interface{}{
			row.Date.Format(dateLayout),
			row.SaleID,
			row.Cashier,
			row.Product,
			row.Quantity.InexactFloat64(),
			row.UnitPrice.InexactFloat64(),
			row.Subtotal.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
