package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockMovementRepository interface {
	Create(tx *gorm.DB, movement *model.StockMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page Page) ([]model.StockMovement, int64, error)
	// LedgerBalance replays the ledger: sum of STOCK_IN minus sum of STOCK_OUT.
	LedgerBalance(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
	FindInRange(ctx context.Context, from, to time.Time) ([]model.StockMovement, error)
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	return tx.Omit(clause.Associations).Create(movement).Error
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, productID uuid.UUID, page Page) ([]model.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []model.StockMovement
	err := query.Preload("User").Order("created_at DESC").Scopes(paginate(page)).Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepo) LedgerBalance(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var movements []model.StockMovement
	if err := r.db.WithContext(ctx).
		Select("type", "quantity").
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for i := range movements {
		balance = balance.Add(movements[i].Signed())
	}
	return balance, nil
}

func (r *stockMovementRepo) FindInRange(ctx context.Context, from, to time.Time) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}
