package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 20
)

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,max=150"`
	CategoryID   uuid.UUID       `json:"category_id" validate:"uuid_required"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"gt=0"`
	UnitType     model.UnitType  `json:"unit_type" validate:"required,oneof=PIECE GRAM"`
	InitialStock decimal.Decimal `json:"initial_stock" validate:"gte=0"`
	Barcode      string          `json:"barcode" validate:"omitempty,max=80"`
}

// UpdateProductRequest changes only the fields that are set. Stock is never edited here.
type UpdateProductRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1,max=150"`
	CategoryID *uuid.UUID       `json:"category_id"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	UnitType   *model.UnitType  `json:"unit_type" validate:"omitempty,oneof=PIECE GRAM"`
	Barcode    *string          `json:"barcode" validate:"omitempty,min=1,max=80"`
	IsActive   *bool            `json:"is_active"`
}

type AddStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note" validate:"max=255"`
}

type StockReconciliation struct {
	ProductID     uuid.UUID       `json:"product_id"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Consistent    bool            `json:"consistent"`
}

type CatalogService interface {
	CreateCategory(ctx context.Context, req *CreateCategoryRequest, actingUserID uuid.UUID) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest, actingUserID uuid.UUID) (*model.Category, error)
	DeactivateCategory(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID) error
	ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)

	CreateProduct(ctx context.Context, req *CreateProductRequest, actingUserID uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, actingUserID uuid.UUID) (*model.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetProductByBarcode(ctx context.Context, code string) (*model.Product, error)
	SearchProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, int64, error)
	SuggestProducts(ctx context.Context, prefix string, limit int) ([]model.Product, error)

	AddStock(ctx context.Context, productID uuid.UUID, req *AddStockRequest, actingUserID uuid.UUID) (*model.Product, error)
	ListMovements(ctx context.Context, productID uuid.UUID, page repository.Page) ([]model.StockMovement, int64, error)
	ReconcileStock(ctx context.Context, productID uuid.UUID) (*StockReconciliation, error)
}

type catalogService struct {
	db           *gorm.DB
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	barcodes     BarcodeService
	notifier     ws.Notifier
	log          *zap.Logger
}

func NewCatalogService(db *gorm.DB, repos *repository.Repositories, barcodes BarcodeService, notifier ws.Notifier, log *zap.Logger) CatalogService {
	return &catalogService{
		db:           db,
		categoryRepo: repos.Category,
		productRepo:  repos.Products,
		movementRepo: repos.Movements,
		userRepo:     repos.Users,
		auditRepo:    repos.Audit,
		barcodes:     barcodes,
		notifier:     notifier,
		log:          log,
	}
}

func (s *catalogService) publish(eventType, action string, payload interface{}, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ws.Event{Type: eventType, Action: action, Payload: payload, Message: message})
}

// Categories

func (s *catalogService) CreateCategory(ctx context.Context, req *CreateCategoryRequest, actingUserID uuid.UUID) (*model.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryName(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	actor := actingUserID.String()
	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	category.CreatedBy = actor
	category.UpdatedBy = actor

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.categoryRepo.Create(tx, category); err != nil {
			return err
		}
		return writeAudit(tx, s.auditRepo, actingUserID, model.AuditCreate, "category", category.ID.String(), category)
	})
	if err != nil {
		return nil, storageError(err, "category", category.Name)
	}

	s.publish(ws.EventCatalog, "category_created", category, "")
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest, actingUserID uuid.UUID) (*model.Category, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "category", id)
	}
	if req.Name != nil && *req.Name != category.Name {
		if err := s.ensureCategoryName(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		if !*req.IsActive && category.IsActive {
			if err := s.ensureCategoryUnused(ctx, id); err != nil {
				return nil, err
			}
		}
		category.IsActive = *req.IsActive
	}
	category.UpdatedBy = actingUserID.String()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.categoryRepo.Update(tx, category); err != nil {
			return err
		}
		return writeAudit(tx, s.auditRepo, actingUserID, model.AuditUpdate, "category", id.String(), req)
	})
	if err != nil {
		return nil, storageError(err, "category", id)
	}

	s.publish(ws.EventCatalog, "category_updated", category, "")
	return category, nil
}

// DeactivateCategory refuses while active products still reference the category.
func (s *catalogService) DeactivateCategory(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return storageError(err, "category", id)
	}
	if err := s.ensureCategoryUnused(ctx, id); err != nil {
		return err
	}

	category.IsActive = false
	category.UpdatedBy = actingUserID.String()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.categoryRepo.Update(tx, category); err != nil {
			return err
		}
		return writeAudit(tx, s.auditRepo, actingUserID, model.AuditDeactivate, "category", id.String(), nil)
	})
	if err != nil {
		return storageError(err, "category", id)
	}

	s.publish(ws.EventCatalog, "category_deactivated", category, "")
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx, includeInactive)
	if err != nil {
		return nil, Unexpected("failed to list categories", err)
	}
	return categories, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "category", id)
	}
	return category, nil
}

func (s *catalogService) ensureCategoryName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Unexpected("failed to check category name", err)
	}
	if existing != nil && existing.ID != self {
		return Conflict("category '%s' already exists", name)
	}
	return nil
}

func (s *catalogService) ensureCategoryUnused(ctx context.Context, id uuid.UUID) error {
	count, err := s.productRepo.CountActiveByCategory(ctx, id)
	if err != nil {
		return Unexpected("failed to count products", err)
	}
	if count > 0 {
		return Conflict("category is used by %d active product(s)", count)
	}
	return nil
}

func (s *catalogService) activeCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "category", id)
	}
	if !category.IsActive {
		return nil, NotFound("category '%s' not found", id)
	}
	return category, nil
}

// Products

func (s *catalogService) CreateProduct(ctx context.Context, req *CreateProductRequest, actingUserID uuid.UUID) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Barcode = strings.TrimSpace(req.Barcode)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !req.UnitPrice.Equal(req.UnitPrice.Round(2)) {
		return nil, Validation("unit_price has more than 2 decimal places")
	}
	if !req.InitialStock.IsZero() {
		if err := checkQuantity(req.InitialStock, req.UnitType, req.Name); err != nil {
			return nil, err
		}
	}

	category, err := s.activeCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureProductName(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	code := req.Barcode
	if code == "" {
		if code, err = s.barcodes.GenerateUniqueBarcode(ctx); err != nil {
			return nil, err
		}
	} else if err := s.ensureBarcode(ctx, code, uuid.Nil); err != nil {
		return nil, err
	}

	actor := actingUserID.String()
	product := &model.Product{
		Name:          req.Name,
		CategoryID:    category.ID,
		UnitPrice:     req.UnitPrice,
		UnitType:      req.UnitType,
		StockQuantity: req.InitialStock,
		Barcode:       code,
		IsActive:      true,
	}
	product.CreatedBy = actor
	product.UpdatedBy = actor

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.FindActive(tx, actingUserID); err != nil {
			return storageError(err, "user", actingUserID)
		}
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		// opening stock goes through the ledger like any other stock-in
		if product.StockQuantity.IsPositive() {
			movement := &model.StockMovement{
				ProductID: product.ID,
				UserID:    actingUserID,
				Type:      model.StockIn,
				Quantity:  product.StockQuantity,
				Note:      "initial stock",
			}
			if err := s.movementRepo.Create(tx, movement); err != nil {
				return err
			}
		}
		return writeAudit(tx, s.auditRepo, actingUserID, model.AuditCreate, "product", product.ID.String(), product)
	})
	if err != nil {
		return nil, storageError(err, "product", product.Name)
	}

	product.Category = category
	s.log.Info("product created", zap.String("product_id", product.ID.String()), zap.String("barcode", product.Barcode))
	s.publish(ws.EventCatalog, "product_created", product, "")
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, actingUserID uuid.UUID) (*model.Product, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Barcode != nil {
		trimmed := strings.TrimSpace(*req.Barcode)
		req.Barcode = &trimmed
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.UnitPrice != nil {
		if !req.UnitPrice.IsPositive() {
			return nil, Validation("unit_price must be greater than zero")
		}
		if !req.UnitPrice.Equal(req.UnitPrice.Round(2)) {
			return nil, Validation("unit_price has more than 2 decimal places")
		}
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "product", id)
	}

	if req.Name != nil && *req.Name != product.Name {
		if err := s.ensureProductName(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		product.Name = *req.Name
	}
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		category, err := s.activeCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
		product.Category = category
	}
	if req.UnitPrice != nil {
		product.UnitPrice = *req.UnitPrice
	}
	if req.UnitType != nil {
		if req.UnitType.Discrete() && !product.StockQuantity.IsInteger() {
			return nil, Validation("cannot switch '%s' to %s while stock %s is fractional",
				product.Name, *req.UnitType, product.StockQuantity.String())
		}
		product.UnitType = *req.UnitType
	}
	if req.Barcode != nil && *req.Barcode != product.Barcode {
		if err := s.ensureBarcode(ctx, *req.Barcode, id); err != nil {
			return nil, err
		}
		product.Barcode = *req.Barcode
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedBy = actingUserID.String()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Update(tx, product); err != nil {
			return err
		}
		return writeAudit(tx, s.auditRepo, actingUserID, model.AuditUpdate, "product", id.String(), req)
	})
	if err != nil {
		return nil, storageError(err, "product", id)
	}

	s.publish(ws.EventCatalog, "product_updated", product, "")
	return product, nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return storageError(err, "product", id)
	}
	product.IsActive = false
	product.UpdatedBy = actingUserID.String()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Update(tx, product); err != nil {
			return err
		}
		return writeAudit(tx, s.auditRepo, actingUserID, model.AuditDeactivate, "product", id.String(), nil)
	})
	if err != nil {
		return storageError(err, "product", id)
	}

	s.publish(ws.EventCatalog, "product_deactivated", product, "")
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "product", id)
	}
	return product, nil
}

// GetProductByBarcode is the scanner lookup; inactive products are not sellable and read as missing.
func (s *catalogService) GetProductByBarcode(ctx context.Context, code string) (*model.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, Validation("barcode is required")
	}
	product, err := s.productRepo.FindByBarcode(ctx, code)
	if err != nil {
		return nil, storageError(err, "product with barcode", code)
	}
	if !product.IsActive {
		return nil, NotFound("product with barcode '%s' not found", code)
	}
	return product, nil
}

func (s *catalogService) SearchProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	f.Query = strings.TrimSpace(f.Query)
	products, total, err := s.productRepo.Search(ctx, f)
	if err != nil {
		return nil, 0, Unexpected("failed to search products", err)
	}
	return products, total, nil
}

func (s *catalogService) SuggestProducts(ctx context.Context, prefix string, limit int) ([]model.Product, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []model.Product{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}
	products, err := s.productRepo.Suggest(ctx, prefix, limit)
	if err != nil {
		return nil, Unexpected("failed to suggest products", err)
	}
	return products, nil
}

func (s *catalogService) ensureProductName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.productRepo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Unexpected("failed to check product name", err)
	}
	if existing != nil && existing.ID != self {
		return Conflict("product '%s' already exists", name)
	}
	return nil
}

func (s *catalogService) ensureBarcode(ctx context.Context, code string, self uuid.UUID) error {
	if !s.barcodes.ValidateFormat(code) {
		return Validation("barcode '%s' is not valid", code)
	}
	existing, err := s.productRepo.FindByBarcode(ctx, code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Unexpected("failed to check barcode", err)
	}
	if existing != nil && existing.ID != self {
		return Conflict("barcode '%s' is already assigned to '%s'", code, existing.Name)
	}
	return nil
}

// Stock

// AddStock raises a product's stock and records the matching STOCK_IN movement in one transaction.
func (s *catalogService) AddStock(ctx context.Context, productID uuid.UUID, req *AddStockRequest, actingUserID uuid.UUID) (*model.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !req.Quantity.IsPositive() {
		return nil, Validation("quantity must be greater than zero")
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindActive(tx, actingUserID)
		if err != nil {
			return storageError(err, "user", actingUserID)
		}
		product, err = s.productRepo.LockByID(tx, productID)
		if err != nil {
			return storageError(err, "product", productID)
		}
		if err := checkQuantity(req.Quantity, product.UnitType, product.Name); err != nil {
			return err
		}

		if err := s.productRepo.IncrementStock(tx, product.ID, req.Quantity, user.ID.String()); err != nil {
			return err
		}
		movement := &model.StockMovement{
			ProductID: product.ID,
			UserID:    user.ID,
			Type:      model.StockIn,
			Quantity:  req.Quantity,
			Note:      req.Note,
		}
		if err := s.movementRepo.Create(tx, movement); err != nil {
			return err
		}
		product.StockQuantity = product.StockQuantity.Add(req.Quantity)
		return writeAudit(tx, s.auditRepo, user.ID, model.AuditStockIn, "product", product.ID.String(), map[string]interface{}{
			"quantity": req.Quantity,
			"note":     req.Note,
		})
	})
	if err != nil {
		if KindOf(err) == KindUnexpected {
			s.log.Error("add stock failed", zap.Error(err), zap.String("product_id", productID.String()))
		}
		return nil, storageError(err, "product", productID)
	}

	s.log.Info("stock added",
		zap.String("product_id", product.ID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("stock", product.StockQuantity.String()))
	s.publish(ws.EventStockUpdate, "stock_in", map[string]interface{}{
		"product_id":     product.ID,
		"name":           product.Name,
		"stock_quantity": product.StockQuantity,
		"added":          req.Quantity,
	}, fmt.Sprintf("stock of '%s' increased by %s", product.Name, req.Quantity.String()))
	return product, nil
}

func (s *catalogService) ListMovements(ctx context.Context, productID uuid.UUID, page repository.Page) ([]model.StockMovement, int64, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, 0, storageError(err, "product", productID)
	}
	movements, total, err := s.movementRepo.ListByProduct(ctx, productID, page)
	if err != nil {
		return nil, 0, Unexpected("failed to list stock movements", err)
	}
	return movements, total, nil
}

// ReconcileStock replays the movement ledger and compares it with the stored stock.
func (s *catalogService) ReconcileStock(ctx context.Context, productID uuid.UUID) (*StockReconciliation, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, storageError(err, "product", productID)
	}
	balance, err := s.movementRepo.LedgerBalance(ctx, productID)
	if err != nil {
		return nil, Unexpected("failed to replay stock ledger", err)
	}
	result := &StockReconciliation{
		ProductID:     product.ID,
		StockQuantity: product.StockQuantity,
		LedgerBalance: balance,
		Consistent:    product.StockQuantity.Equal(balance),
	}
	if !result.Consistent {
		s.log.Warn("stock ledger mismatch",
			zap.String("product_id", productID.String()),
			zap.String("stock", product.StockQuantity.String()),
			zap.String("ledger", balance.String()))
	}
	return result, nil
}
