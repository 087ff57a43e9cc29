package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementType string

const (
	StockIn  MovementType = "STOCK_IN"
	StockOut MovementType = "STOCK_OUT"
)

// StockMovement is an append-only ledger row; every stock mutation writes one.
type StockMovement struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type      MovementType    `gorm:"type:varchar(10);not null;check:chk_stock_movements_type,type IN ('STOCK_IN','STOCK_OUT')" json:"type"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,3);not null;check:chk_stock_movements_quantity,quantity > 0" json:"quantity"`
	SaleID    *uuid.UUID      `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	Note      string          `gorm:"type:varchar(255)" json:"note,omitempty"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Signed returns the quantity with the sign of its direction.
func (m *StockMovement) Signed() decimal.Decimal {
	if m.Type == StockOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
