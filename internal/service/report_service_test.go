package service

import (
	"bytes"
	"testing"
	"time"

	"go-pos-ws/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReports(t *testing.T) {
	f := newFixture(t)
	water := f.product(t, "Water", "1.25", "20", model.UnitPiece)
	bread := f.product(t, "Bread", "2.00", "4", model.UnitPiece)

	_, err := f.sales().CreateSale(f.ctx, cart(line(water, "4"), line(bread, "1")), f.cashier.ID)
	require.NoError(t, err)
	_, err = f.sales().CreateSale(f.ctx, cart(line(bread, "2")), f.cashier.ID)
	require.NoError(t, err)

	reports := NewReportService(f.repos, 5, zap.NewNop())
	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)

	t.Run("dashboard", func(t *testing.T) {
		stats, err := reports.GetDashboardStats(f.ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, stats.ActiveProducts)
		assert.EqualValues(t, 1, stats.LowStockCount)
		assert.EqualValues(t, 2, stats.TodaySalesCount)
		requireDecimal(t, "11", stats.TodayRevenue)
		requireDecimal(t, "22", stats.InventoryValue)
	})

	t.Run("summary", func(t *testing.T) {
		summary, err := reports.GetSalesSummary(f.ctx, from, to)
		require.NoError(t, err)
		assert.EqualValues(t, 2, summary.SaleCount)
		requireDecimal(t, "11", summary.Revenue)
		requireDecimal(t, "7", summary.UnitsSold)
		requireDecimal(t, "5.5", summary.AverageTicket)
	})

	t.Run("top products", func(t *testing.T) {
		top, err := reports.GetTopProducts(f.ctx, from, to, 0)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "Bread", top[0].ProductName)
		requireDecimal(t, "3", top[0].Quantity)
		requireDecimal(t, "6", top[0].Revenue)
	})

	t.Run("stock movement chart", func(t *testing.T) {
		points, err := reports.GetStockMovement(f.ctx, 3)
		require.NoError(t, err)
		require.Len(t, points, 3)
		today := points[2]
		assert.Equal(t, time.Now().UTC().Format("2006-01-02"), today.Date)
		requireDecimal(t, "24", today.Inbound)
		requireDecimal(t, "7", today.Outbound)
		requireDecimal(t, "0", points[0].Inbound)
	})

	t.Run("exports", func(t *testing.T) {
		xlsx, err := reports.ExportSalesXLSX(f.ctx, from, to)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(xlsx, []byte("PK")))

		pdf, err := reports.ExportSalesPDF(f.ctx, from, to)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := reports.GetSalesSummary(f.ctx, to, from)
		assert.Equal(t, KindValidation, KindOf(err))

		_, err = reports.ExportSalesPDF(f.ctx, from.AddDate(-2, 0, 0), to)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}
