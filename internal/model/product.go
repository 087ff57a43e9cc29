package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitType is the measurement discipline of a product.
type UnitType string

const (
	UnitPiece UnitType = "PIECE" // discrete count
	UnitGram  UnitType = "GRAM"  // fractional weight
)

func (u UnitType) Valid() bool {
	return u == UnitPiece || u == UnitGram
}

// Discrete reports whether quantities must be whole numbers.
func (u UnitType) Discrete() bool {
	return u == UnitPiece
}

type Product struct {
	BaseModel
	Name          string          `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null;check:chk_products_unit_price,unit_price > 0" json:"unit_price"`
	UnitType      UnitType        `gorm:"type:varchar(10);not null;check:chk_products_unit_type,unit_type IN ('PIECE','GRAM')" json:"unit_type"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null;check:chk_products_stock_quantity,stock_quantity >= 0" json:"stock_quantity"`
	Barcode       string          `gorm:"type:varchar(80);uniqueIndex;not null" json:"barcode"`
	IsActive      bool            `gorm:"not null;default:true;index" json:"is_active"`
}
