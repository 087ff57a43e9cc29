package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardStats is the overview shown on the back-office dashboard.
type DashboardStats struct {
	ActiveProducts  int64           `json:"active_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	InventoryValue  decimal.Decimal `json:"inventory_value"`
	TodaySalesCount int64           `json:"today_sales_count"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
}

type SalesSummary struct {
	SaleCount     int64           `json:"sale_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	UnitsSold     decimal.Decimal `json:"units_sold"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

type TopProduct struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type ReportRepository interface {
	DashboardStats(ctx context.Context, lowStockThreshold int, dayStart, dayEnd time.Time) (*DashboardStats, error)
	SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

type sumRow struct {
	Total decimal.Decimal
}

func (r *reportRepo) DashboardStats(ctx context.Context, lowStockThreshold int, dayStart, dayEnd time.Time) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	active := db.Model(&model.Product{}).Where("is_active = ?", true)
	if err := active.Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Product{}).
		Where("is_active = ? AND stock_quantity < ?", true, lowStockThreshold).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	var valuation sumRow
	if err := db.Model(&model.Product{}).
		Select("COALESCE(SUM(stock_quantity * unit_price), 0) AS total").
		Where("is_active = ?", true).
		Scan(&valuation).Error; err != nil {
		return nil, err
	}
	stats.InventoryValue = valuation.Total

	today, err := r.SalesSummary(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	stats.TodaySalesCount = today.SaleCount
	stats.TodayRevenue = today.Revenue

	return &stats, nil
}

func (r *reportRepo) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	db := r.db.WithContext(ctx)
	var summary SalesSummary

	if err := db.Model(&model.Sale{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&summary.SaleCount).Error; err != nil {
		return nil, err
	}

	var revenue sumRow
	if err := db.Model(&model.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	summary.Revenue = revenue.Total

	var units sumRow
	if err := db.Table("sale_items").
		Select("COALESCE(SUM(sale_items.quantity), 0) AS total").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", from, to).
		Scan(&units).Error; err != nil {
		return nil, err
	}
	summary.UnitsSold = units.Total

	summary.AverageTicket = decimal.Zero
	if summary.SaleCount > 0 {
		summary.AverageTicket = summary.Revenue.Div(decimal.NewFromInt(summary.SaleCount)).Round(2)
	}
	return &summary, nil
}

func (r *reportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).Table("sale_items").
		Select(`products.id AS product_id,
			products.name AS product_name,
			SUM(sale_items.quantity) AS quantity,
			SUM(sale_items.quantity * sale_items.unit_price) AS revenue`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", from, to).
		Group("products.id, products.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
