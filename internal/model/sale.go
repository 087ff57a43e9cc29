package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is one checkout. It is created together with its items and never updated.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;check:chk_sales_total_amount,total_amount > 0" json:"total_amount"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	Items       []SaleItem      `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleItem carries the unit price captured when the sale was made.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,3);not null;check:chk_sale_items_quantity,quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;check:chk_sale_items_unit_price,unit_price > 0" json:"unit_price"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Subtotal is quantity times the captured price, rounded to cents.
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice).Round(2)
}

type SaleItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Barcode     string          `json:"barcode"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	UserName    string             `json:"user_name"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	CreatedAt   time.Time          `json:"created_at"`
	Items       []SaleItemResponse `json:"items"`
}

// ToResponse expects User and Items[].Product to be loaded when names are wanted.
func (s *Sale) ToResponse() SaleResponse {
	resp := SaleResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		TotalAmount: s.TotalAmount,
		CreatedAt:   s.CreatedAt,
		Items:       make([]SaleItemResponse, len(s.Items)),
	}
	if s.User != nil {
		resp.UserName = s.User.FullName
	}
	for i := range s.Items {
		item := &s.Items[i]
		line := SaleItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.Barcode = item.Product.Barcode
		}
		resp.Items[i] = line
	}
	return resp
}
