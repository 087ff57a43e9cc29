package service

import (
	"context"
	"testing"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	repos    *repository.Repositories
	events   *ws.Recorder
	cashier  *model.User
	category *model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", URL: "file::memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cashier := &model.User{Email: "cashier@example.com", FullName: "Test Cashier", IsActive: true}
	require.NoError(t, cashier.SetPassword("secret1"))
	require.NoError(t, db.Create(cashier).Error)

	category := &model.Category{Name: "Drinks", IsActive: true}
	require.NoError(t, db.Create(category).Error)

	return &fixture{
		ctx:      context.Background(),
		db:       db,
		repos:    repository.NewRepositories(db),
		events:   &ws.Recorder{},
		cashier:  cashier,
		category: category,
	}
}

func (f *fixture) sales() SaleService {
	return NewSaleService(f.db, f.repos, f.events, zap.NewNop())
}

func (f *fixture) barcodes() BarcodeService {
	return NewBarcodeService(f.repos, zap.NewNop())
}

func (f *fixture) catalog() CatalogService {
	return NewCatalogService(f.db, f.repos, f.barcodes(), f.events, zap.NewNop())
}

// product inserts a product and the STOCK_IN movement backing its opening stock.
func (f *fixture) product(t *testing.T, name, price, stock string, unit model.UnitType) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:          name,
		CategoryID:    f.category.ID,
		UnitPrice:     decimal.RequireFromString(price),
		UnitType:      unit,
		StockQuantity: decimal.RequireFromString(stock),
		Barcode:       "SKU-" + name,
		IsActive:      true,
	}
	require.NoError(t, f.db.Create(p).Error)
	if p.StockQuantity.IsPositive() {
		require.NoError(t, f.db.Create(&model.StockMovement{
			ProductID: p.ID,
			UserID:    f.cashier.ID,
			Type:      model.StockIn,
			Quantity:  p.StockQuantity,
		}).Error)
	}
	return p
}

func (f *fixture) stockOf(t *testing.T, p *model.Product) decimal.Decimal {
	t.Helper()
	var fresh model.Product
	require.NoError(t, f.db.First(&fresh, "id = ?", p.ID).Error)
	return fresh.StockQuantity
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func cart(lines ...CartItem) *CreateSaleRequest {
	return &CreateSaleRequest{Items: lines}
}

func line(p *model.Product, qty string) CartItem {
	return CartItem{ProductID: p.ID, Quantity: decimal.RequireFromString(qty)}
}
