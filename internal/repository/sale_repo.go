package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleFilter struct {
	From   *time.Time
	To     *time.Time
	UserID *uuid.UUID
	Page   Page
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	CreateItem(tx *gorm.DB, item *model.SaleItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]model.Sale, int64, error)
	// FindInRange loads every sale in [from, to) with items, products and users, oldest first.
	FindInRange(ctx context.Context, from, to time.Time) ([]model.Sale, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// Create inserts only the sale row; items are written one by one with CreateItem.
func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Omit(clause.Associations).Create(sale).Error
}

func (r *saleRepo) CreateItem(tx *gorm.DB, item *model.SaleItem) error {
	return tx.Omit(clause.Associations).Create(item).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) List(ctx context.Context, f SaleFilter) ([]model.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Sale{})
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at < ?", *f.To)
	}
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := query.Preload("User").Preload("Items.Product").
		Order("created_at DESC").
		Scopes(paginate(f.Page)).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) FindInRange(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Items.Product").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}
