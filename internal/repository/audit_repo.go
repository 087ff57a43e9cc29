package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditFilter struct {
	UserID     *uuid.UUID
	EntityType string
	EntityID   string
	Action     string
	Page       Page
}

type AuditRepository interface {
	Create(tx *gorm.DB, entry *model.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]model.AuditLog, int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Create(tx *gorm.DB, entry *model.AuditLog) error {
	return tx.Create(entry).Error
}

func (r *auditRepo) List(ctx context.Context, f AuditFilter) ([]model.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.EntityType != "" {
		query = query.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		query = query.Where("entity_id = ?", f.EntityID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.AuditLog
	err := query.Order("created_at DESC").Scopes(paginate(f.Page)).Find(&entries).Error
	return entries, total, err
}
