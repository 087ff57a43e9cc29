package service

import (
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/barcode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductRequest(f *fixture, name string) *CreateProductRequest {
	return &CreateProductRequest{
		Name:       name,
		CategoryID: f.category.ID,
		UnitPrice:  decimal.RequireFromString("3.50"),
		UnitType:   model.UnitPiece,
	}
}

func TestCreateProduct_GeneratesBarcodeAndOpeningMovement(t *testing.T) {
	f := newFixture(t)
	req := newProductRequest(f, "  Orange Juice ")
	req.InitialStock = decimal.NewFromInt(12)

	p, err := f.catalog().CreateProduct(f.ctx, req, f.cashier.ID)
	require.NoError(t, err)

	assert.Equal(t, "Orange Juice", p.Name)
	assert.True(t, barcode.IsValidEAN13(p.Barcode), p.Barcode)
	assert.True(t, p.IsActive)
	requireDecimal(t, "12", f.stockOf(t, p))

	rec, err := f.catalog().ReconcileStock(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)

	assert.Contains(t, f.events.Types(), ws.EventCatalog)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	catalog := f.catalog()

	cases := map[string]func(r *CreateProductRequest){
		"missing name":     func(r *CreateProductRequest) { r.Name = " " },
		"zero price":       func(r *CreateProductRequest) { r.UnitPrice = decimal.Zero },
		"negative price":   func(r *CreateProductRequest) { r.UnitPrice = decimal.NewFromInt(-1) },
		"sub-cent price":   func(r *CreateProductRequest) { r.UnitPrice = decimal.RequireFromString("1.005") },
		"bad unit":         func(r *CreateProductRequest) { r.UnitType = "LITRE" },
		"negative stock":   func(r *CreateProductRequest) { r.InitialStock = decimal.NewFromInt(-3) },
		"fractional piece": func(r *CreateProductRequest) { r.InitialStock = decimal.RequireFromString("2.5") },
		"bad ean":          func(r *CreateProductRequest) { r.Barcode = "4006381333932" },
		"missing category": func(r *CreateProductRequest) { r.CategoryID = uuid.Nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := newProductRequest(f, "Widget")
			mutate(req)
			_, err := catalog.CreateProduct(f.ctx, req, f.cashier.ID)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
	assert.Zero(t, f.count(t, &model.Product{}))
}

func TestCreateProduct_Conflicts(t *testing.T) {
	f := newFixture(t)
	catalog := f.catalog()

	req := newProductRequest(f, "Cola")
	req.Barcode = "4006381333931"
	_, err := catalog.CreateProduct(f.ctx, req, f.cashier.ID)
	require.NoError(t, err)

	_, err = catalog.CreateProduct(f.ctx, newProductRequest(f, "cola"), f.cashier.ID)
	assert.Equal(t, KindConflict, KindOf(err))

	other := newProductRequest(f, "Lemonade")
	other.Barcode = "4006381333931"
	_, err = catalog.CreateProduct(f.ctx, other, f.cashier.ID)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	req := newProductRequest(f, "Cola")
	req.CategoryID = uuid.New()

	_, err := f.catalog().CreateProduct(f.ctx, req, f.cashier.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)
	cheese := f.product(t, "Cheese", "0.04", "10.5", model.UnitGram)
	catalog := f.catalog()

	name := "Aged Cheese"
	price := decimal.RequireFromString("0.05")
	p, err := catalog.UpdateProduct(f.ctx, cheese.ID, &UpdateProductRequest{Name: &name, UnitPrice: &price}, f.cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aged Cheese", p.Name)
	requireDecimal(t, "0.05", p.UnitPrice)
	requireDecimal(t, "10.5", f.stockOf(t, cheese))

	piece := model.UnitPiece
	_, err = catalog.UpdateProduct(f.ctx, cheese.ID, &UpdateProductRequest{UnitType: &piece}, f.cashier.ID)
	assert.Equal(t, KindValidation, KindOf(err))

	zero := decimal.Zero
	_, err = catalog.UpdateProduct(f.ctx, cheese.ID, &UpdateProductRequest{UnitPrice: &zero}, f.cashier.ID)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = catalog.UpdateProduct(f.ctx, uuid.New(), &UpdateProductRequest{Name: &name}, f.cashier.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeactivateProduct_HidesFromScanner(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cola", "1.00", "3", model.UnitPiece)
	catalog := f.catalog()

	found, err := catalog.GetProductByBarcode(f.ctx, p.Barcode)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	require.NoError(t, catalog.DeactivateProduct(f.ctx, p.ID, f.cashier.ID))

	_, err = catalog.GetProductByBarcode(f.ctx, p.Barcode)
	assert.Equal(t, KindNotFound, KindOf(err))

	stored, err := catalog.GetProduct(f.ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestSearchAndSuggest(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Coffee Beans", "9.00", "1", model.UnitPiece)
	f.product(t, "Cocoa", "4.00", "1", model.UnitPiece)
	f.product(t, "100%_Juice", "2.00", "1", model.UnitPiece)
	tea := f.product(t, "Green Tea", "3.00", "1", model.UnitPiece)
	require.NoError(t, f.db.Model(tea).Update("is_active", false).Error)
	catalog := f.catalog()

	products, total, err := catalog.SearchProducts(f.ctx, repository.ProductFilter{Query: "co"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, products, 2)

	products, _, err = catalog.SearchProducts(f.ctx, repository.ProductFilter{Query: "tea", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, products, 1)

	products, _, err = catalog.SearchProducts(f.ctx, repository.ProductFilter{Query: "%_"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "100%_Juice", products[0].Name)

	suggestions, err := catalog.SuggestProducts(f.ctx, "CO", 1)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Cocoa", suggestions[0].Name)

	suggestions, err = catalog.SuggestProducts(f.ctx, "tea", 10)
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	suggestions, err = catalog.SuggestProducts(f.ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestAddStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cola", "1.00", "3", model.UnitPiece)
	catalog := f.catalog()

	updated, err := catalog.AddStock(f.ctx, p.ID, &AddStockRequest{Quantity: decimal.NewFromInt(7), Note: "delivery"}, f.cashier.ID)
	require.NoError(t, err)
	requireDecimal(t, "10", updated.StockQuantity)
	requireDecimal(t, "10", f.stockOf(t, p))

	movements, total, err := catalog.ListMovements(f.ctx, p.ID, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	var delivery *model.StockMovement
	for i := range movements {
		if movements[i].Note == "delivery" {
			delivery = &movements[i]
		}
	}
	require.NotNil(t, delivery)
	assert.Equal(t, model.StockIn, delivery.Type)
	requireDecimal(t, "7", delivery.Quantity)

	assert.Equal(t, []string{ws.EventStockUpdate}, f.events.Types())
}

func TestAddStock_Failures(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cola", "1.00", "3", model.UnitPiece)
	catalog := f.catalog()

	_, err := catalog.AddStock(f.ctx, uuid.New(), &AddStockRequest{Quantity: decimal.NewFromInt(1)}, f.cashier.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = catalog.AddStock(f.ctx, p.ID, &AddStockRequest{Quantity: decimal.NewFromInt(1)}, uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = catalog.AddStock(f.ctx, p.ID, &AddStockRequest{Quantity: decimal.Zero}, f.cashier.ID)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = catalog.AddStock(f.ctx, p.ID, &AddStockRequest{Quantity: decimal.RequireFromString("0.5")}, f.cashier.ID)
	assert.Equal(t, KindValidation, KindOf(err))

	requireDecimal(t, "3", f.stockOf(t, p))
	assert.EqualValues(t, 1, f.count(t, &model.StockMovement{}))
}

func TestReconcileStock_DetectsDrift(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cola", "1.00", "3", model.UnitPiece)
	require.NoError(t, f.db.Model(p).Update("stock_quantity", 5).Error)

	rec, err := f.catalog().ReconcileStock(f.ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	requireDecimal(t, "5", rec.StockQuantity)
	requireDecimal(t, "3", rec.LedgerBalance)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	catalog := f.catalog()

	snacks, err := catalog.CreateCategory(f.ctx, &CreateCategoryRequest{Name: "Snacks"}, f.cashier.ID)
	require.NoError(t, err)

	_, err = catalog.CreateCategory(f.ctx, &CreateCategoryRequest{Name: "drinks"}, f.cashier.ID)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = catalog.CreateCategory(f.ctx, &CreateCategoryRequest{Name: ""}, f.cashier.ID)
	assert.Equal(t, KindValidation, KindOf(err))

	desc := "salty things"
	updated, err := catalog.UpdateCategory(f.ctx, snacks.ID, &UpdateCategoryRequest{Description: &desc}, f.cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, "salty things", updated.Description)

	f.product(t, "Cola", "1.00", "3", model.UnitPiece)
	err = catalog.DeactivateCategory(f.ctx, f.category.ID, f.cashier.ID)
	assert.Equal(t, KindConflict, KindOf(err))

	require.NoError(t, catalog.DeactivateCategory(f.ctx, snacks.ID, f.cashier.ID))

	active, err := catalog.ListCategories(f.ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Drinks", active[0].Name)

	all, err := catalog.ListCategories(f.ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	req := newProductRequest(f, "Chips")
	req.CategoryID = snacks.ID
	_, err = catalog.CreateProduct(f.ctx, req, f.cashier.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
