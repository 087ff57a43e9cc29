package service

import (
	"context"
	"encoding/json"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditService interface {
	List(ctx context.Context, f repository.AuditFilter) ([]model.AuditLog, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(repos *repository.Repositories) AuditService {
	return &auditService{auditRepo: repos.Audit}
}

func (s *auditService) List(ctx context.Context, f repository.AuditFilter) ([]model.AuditLog, int64, error) {
	entries, total, err := s.auditRepo.List(ctx, f)
	if err != nil {
		return nil, 0, Unexpected("failed to list audit logs", err)
	}
	return entries, total, nil
}

// writeAudit appends an audit entry through tx so it commits or rolls back with the change.
func writeAudit(tx *gorm.DB, repo repository.AuditRepository, actor uuid.UUID, action, entityType, entityID string, details interface{}) error {
	entry := &model.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if actor != uuid.Nil {
		entry.UserID = &actor
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		entry.Details = string(raw)
	}
	return repo.Create(tx, entry)
}
