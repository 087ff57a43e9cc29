package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string     `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID   string     `gorm:"type:varchar(64);index" json:"entity_id"`
	Details    string     `gorm:"type:text" json:"details,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

const (
	AuditCreate     = "CREATE"
	AuditUpdate     = "UPDATE"
	AuditDeactivate = "DEACTIVATE"
	AuditStockIn    = "STOCK_IN"
	AuditSale       = "SALE"
	AuditLogin      = "LOGIN"
	AuditPrivileges = "PRIVILEGES"
)
