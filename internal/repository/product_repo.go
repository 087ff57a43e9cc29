package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Query           string
	CategoryID      *uuid.UUID
	IncludeInactive bool
	Page            Page
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	Update(tx *gorm.DB, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	BarcodeExists(ctx context.Context, barcode string) (bool, error)
	Search(ctx context.Context, f ProductFilter) ([]model.Product, int64, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]model.Product, error)
	CountActiveByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)

	// LockByIDs reads all products in ids with one IN query, row-locked inside tx.
	LockByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	// DecrementStock subtracts qty only when enough stock remains; false means it did not.
	DecrementStock(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal, updatedBy string) (bool, error)
	IncrementStock(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Omit("Category").Create(product).Error
}

func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	// stock_quantity only moves through Increment/DecrementStock
	return tx.Model(product).
		Select("name", "category_id", "unit_price", "unit_type", "barcode", "is_active", "updated_by").
		Updates(product).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "barcode = ?", barcode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("barcode = ?", barcode).Count(&count).Error
	return count > 0, err
}

func (r *productRepo) Search(ctx context.Context, f ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{})
	if !f.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.Query != "" {
		pattern := likePattern(f.Query, false)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(barcode) LIKE ?"+likeEscape+")", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := query.Preload("Category").Order("name ASC").Scopes(paginate(f.Page)).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Suggest(ctx context.Context, prefix string, limit int) ([]model.Product, error) {
	pattern := likePattern(prefix, true)
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(barcode) LIKE ?"+likeEscape+")", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) CountActiveByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Count(&count).Error
	return count, err
}

func (r *productRepo) LockByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	// ordered by id so concurrent sales lock rows in the same order
	err := forUpdate(tx).Where("id IN ?", ids).Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := forUpdate(tx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock and IncrementStock round in SQL since sqlite keeps decimals as REAL.
func (r *productRepo) DecrementStock(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal, updatedBy string) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("ROUND(stock_quantity - ?, 3)", qty),
			"updated_by":     updatedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) IncrementStock(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("ROUND(stock_quantity + ?, 3)", qty),
			"updated_by":     updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
