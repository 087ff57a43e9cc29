package service

import (
	"errors"
	"sync"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateSale_DecrementsStockAndRecordsMovement(t *testing.T) {
	f := newFixture(t)
	water := f.product(t, "Water", "1500", "10", model.UnitPiece)

	sale, err := f.sales().CreateSale(f.ctx, cart(line(water, "3")), f.cashier.ID)
	require.NoError(t, err)

	requireDecimal(t, "4500", sale.TotalAmount)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Water", sale.Items[0].ProductName)
	requireDecimal(t, "1500", sale.Items[0].UnitPrice)
	assert.Equal(t, "Test Cashier", sale.UserName)
	requireDecimal(t, "7", f.stockOf(t, water))

	var out []model.StockMovement
	require.NoError(t, f.db.Where("product_id = ? AND type = ?", water.ID, model.StockOut).Find(&out).Error)
	require.Len(t, out, 1)
	requireDecimal(t, "3", out[0].Quantity)
	require.NotNil(t, out[0].SaleID)
	assert.Equal(t, sale.ID, *out[0].SaleID)
	assert.Equal(t, f.cashier.ID, out[0].UserID)

	assert.Equal(t, []string{ws.EventSaleCreated, ws.EventStockUpdate}, f.events.Types())
	assert.EqualValues(t, 1, f.count(t, &model.AuditLog{}))
}

func TestCreateSale_ExactStockEmptiesShelf(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Bread", "2.50", "5", model.UnitPiece)

	_, err := f.sales().CreateSale(f.ctx, cart(line(p, "5")), f.cashier.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", f.stockOf(t, p))
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Bread", "2.50", "5", model.UnitPiece)

	_, err := f.sales().CreateSale(f.ctx, cart(line(p, "6")), f.cashier.ID)
	require.Error(t, err)
	assert.Equal(t, KindInsufficientStock, KindOf(err))

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, "Bread", stockErr.ProductName)
	requireDecimal(t, "5", stockErr.Available)
	requireDecimal(t, "6", stockErr.Requested)
	assert.Contains(t, err.Error(), "Bread")

	requireDecimal(t, "5", f.stockOf(t, p))
	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Empty(t, f.events.Events)
}

func TestCreateSale_FractionalOverStock(t *testing.T) {
	f := newFixture(t)
	cheese := f.product(t, "Cheese", "0.04", "500", model.UnitGram)

	_, err := f.sales().CreateSale(f.ctx, cart(line(cheese, "500.001")), f.cashier.ID)
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	requireDecimal(t, "500", f.stockOf(t, cheese))
}

func TestCreateSale_RejectsMalformedCarts(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Bread", "2.50", "5", model.UnitPiece)

	cases := map[string]*CreateSaleRequest{
		"nil":       nil,
		"empty":     cart(),
		"zero":      cart(line(p, "0")),
		"negative":  cart(line(p, "-1")),
		"no id":     cart(CartItem{Quantity: decimal.NewFromInt(1)}),
		"fraction":  cart(line(p, "1.5")),
		"precision": cart(line(p, "1.0001")),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.sales().CreateSale(f.ctx, req, f.cashier.ID)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
	requireDecimal(t, "5", f.stockOf(t, p))
	assert.Zero(t, f.count(t, &model.Sale{}))
}

func TestCreateSale_UnknownOrInactiveProduct(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Bread", "2.50", "5", model.UnitPiece)
	retired := f.product(t, "Retired", "1.00", "5", model.UnitPiece)
	require.NoError(t, f.db.Model(retired).Update("is_active", false).Error)

	_, err := f.sales().CreateSale(f.ctx, cart(line(p, "1"), CartItem{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)}), f.cashier.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.sales().CreateSale(f.ctx, cart(line(retired, "1")), f.cashier.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	requireDecimal(t, "5", f.stockOf(t, p))
}

func TestCreateSale_UnknownUser(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Bread", "2.50", "5", model.UnitPiece)

	_, err := f.sales().CreateSale(f.ctx, cart(line(p, "1")), uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
	requireDecimal(t, "5", f.stockOf(t, p))
}

func TestCreateSale_SecondLineFailureRollsBackFirst(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Apple", "1.00", "10", model.UnitPiece)
	b := f.product(t, "Banana", "1.00", "1", model.UnitPiece)

	_, err := f.sales().CreateSale(f.ctx, cart(line(a, "2"), line(b, "2")), f.cashier.ID)
	assert.Equal(t, KindInsufficientStock, KindOf(err))

	requireDecimal(t, "10", f.stockOf(t, a))
	requireDecimal(t, "1", f.stockOf(t, b))
	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Zero(t, f.count(t, &model.SaleItem{}))
}

func TestCreateSale_StorageFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Water", "1500", "10", model.UnitPiece)
	movementsBefore := f.count(t, &model.StockMovement{})

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_movements", func(tx *gorm.DB) {
		if tx.Statement.Table == "stock_movements" {
			tx.AddError(errors.New("disk full"))
		}
	}))

	_, err := f.sales().CreateSale(f.ctx, cart(line(p, "3")), f.cashier.ID)
	require.Error(t, err)
	assert.Equal(t, KindUnexpected, KindOf(err))

	requireDecimal(t, "10", f.stockOf(t, p))
	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Zero(t, f.count(t, &model.SaleItem{}))
	assert.Equal(t, movementsBefore, f.count(t, &model.StockMovement{}))
	assert.Empty(t, f.events.Events)
}

func TestCreateSale_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Water", "1500", "10", model.UnitPiece)

	sale, err := f.sales().CreateSale(f.ctx, cart(line(p, "2")), f.cashier.ID)
	require.NoError(t, err)

	newPrice := decimal.NewFromInt(2000)
	_, err = f.catalog().UpdateProduct(f.ctx, p.ID, &UpdateProductRequest{UnitPrice: &newPrice}, f.cashier.ID)
	require.NoError(t, err)

	stored, err := f.sales().GetSale(f.ctx, sale.ID)
	require.NoError(t, err)
	requireDecimal(t, "3000", stored.TotalAmount)
	require.Len(t, stored.Items, 1)
	requireDecimal(t, "1500", stored.Items[0].UnitPrice)
	requireDecimal(t, "3000", stored.Items[0].Subtotal)
}

func TestCreateSale_MergesDuplicateLines(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Apple", "1.20", "5", model.UnitPiece)
	b := f.product(t, "Banana", "0.80", "5", model.UnitPiece)

	sale, err := f.sales().CreateSale(f.ctx, cart(line(a, "2"), line(b, "1"), line(a, "3")), f.cashier.ID)
	require.NoError(t, err)

	require.Len(t, sale.Items, 2)
	assert.Equal(t, a.ID, sale.Items[0].ProductID)
	requireDecimal(t, "5", sale.Items[0].Quantity)
	requireDecimal(t, "6.80", sale.TotalAmount)
	requireDecimal(t, "0", f.stockOf(t, a))
}

func TestCreateSale_WeighedProduct(t *testing.T) {
	f := newFixture(t)
	cheese := f.product(t, "Cheese", "0.04", "1000", model.UnitGram)

	sale, err := f.sales().CreateSale(f.ctx, cart(line(cheese, "250.5")), f.cashier.ID)
	require.NoError(t, err)
	requireDecimal(t, "10.02", sale.TotalAmount)
	requireDecimal(t, "749.5", f.stockOf(t, cheese))
}

func TestCreateSale_TotalEqualsSumOfSubtotals(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Apple", "1.15", "50", model.UnitPiece)
	c := f.product(t, "Cheese", "0.37", "5000", model.UnitGram)

	sale, err := f.sales().CreateSale(f.ctx, cart(line(a, "7"), line(c, "333.333")), f.cashier.ID)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range sale.Items {
		sum = sum.Add(item.Subtotal)
	}
	requireDecimal(t, sum.String(), sale.TotalAmount)
}

func TestCreateSale_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Limited", "10", "5", model.UnitPiece)
	svc := f.sales()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateSale(f.ctx, cart(line(p, "1")), f.cashier.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if KindOf(err) == KindInsufficientStock {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, rejected)
	requireDecimal(t, "0", f.stockOf(t, p))
}

func TestCreateSale_StockMatchesLedger(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Water", "1.50", "10", model.UnitPiece)
	catalog := f.catalog()

	_, err := f.sales().CreateSale(f.ctx, cart(line(p, "4")), f.cashier.ID)
	require.NoError(t, err)
	_, err = catalog.AddStock(f.ctx, p.ID, &AddStockRequest{Quantity: decimal.NewFromInt(20)}, f.cashier.ID)
	require.NoError(t, err)
	_, err = f.sales().CreateSale(f.ctx, cart(line(p, "7")), f.cashier.ID)
	require.NoError(t, err)
	_, err = f.sales().CreateSale(f.ctx, cart(line(p, "100")), f.cashier.ID)
	require.Error(t, err)

	rec, err := catalog.ReconcileStock(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	requireDecimal(t, "19", rec.StockQuantity)
	requireDecimal(t, "19", rec.LedgerBalance)
}

func TestCreateSale_WeighedStockMatchesLedger(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cheese", "12.00", "1", model.UnitGram)
	catalog := f.catalog()

	for _, qty := range []string{"0.2", "0.7"} {
		_, err := f.sales().CreateSale(f.ctx, cart(line(p, qty)), f.cashier.ID)
		require.NoError(t, err)
	}
	_, err := catalog.AddStock(f.ctx, p.ID, &AddStockRequest{Quantity: decimal.RequireFromString("0.35")}, f.cashier.ID)
	require.NoError(t, err)
	_, err = f.sales().CreateSale(f.ctx, cart(line(p, "0.15")), f.cashier.ID)
	require.NoError(t, err)

	rec, err := catalog.ReconcileStock(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "stock %s, ledger %s", rec.StockQuantity, rec.LedgerBalance)
	requireDecimal(t, "0.3", rec.StockQuantity)
	requireDecimal(t, "0.3", rec.LedgerBalance)

	// the remaining 0.3 must sell out exactly
	_, err = f.sales().CreateSale(f.ctx, cart(line(p, "0.3")), f.cashier.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", f.stockOf(t, p))
}

func TestCreateSale_BelowMinimumSellable(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Saffron", "0.04", "10", model.UnitGram)

	_, err := f.sales().CreateSale(f.ctx, cart(line(p, "0.1")), f.cashier.ID)
	require.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "Saffron")
	assert.Contains(t, err.Error(), "0.125")
	assert.Zero(t, f.count(t, &model.Sale{}))
	requireDecimal(t, "10", f.stockOf(t, p))

	_, err = f.sales().CreateSale(f.ctx, cart(line(p, "0.125")), f.cashier.ID)
	require.NoError(t, err)
}

func TestListSales(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Water", "1.50", "10", model.UnitPiece)
	for i := 0; i < 3; i++ {
		_, err := f.sales().CreateSale(f.ctx, cart(line(p, "1")), f.cashier.ID)
		require.NoError(t, err)
	}

	sales, total, err := f.sales().ListSales(f.ctx, repository.SaleFilter{UserID: &f.cashier.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, sales, 3)

	_, err = f.sales().GetSale(f.ctx, uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}
