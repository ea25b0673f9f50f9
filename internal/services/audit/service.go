// Package audit writes the append-only admin activity trail.
package audit

import (
	"context"
	"log"

	"datasub/internal/models"
	"datasub/internal/repositories"
)

// Service records and lists admin actions. Log never fails the caller: the
// financial action has already succeeded by the time the trail is written,
// so a trail failure is reduced to a warning.
type Service interface {
	Log(ctx context.Context, adminID uint, action, targetTable, targetID string, details models.JSON)
	List(ctx context.Context, filter repositories.AuditLogFilter) ([]models.AdminActivityLog, int64, error)
}

type service struct {
	repo repositories.AuditLogRepository
}

func NewService(repo repositories.AuditLogRepository) Service {
	if repo == nil {
		panic("audit repository is required")
	}
	return &service{repo: repo}
}

func (s *service) Log(ctx context.Context, adminID uint, action, targetTable, targetID string, details models.JSON) {
	entry := &models.AdminActivityLog{
		AdminID:     adminID,
		Action:      action,
		TargetTable: targetTable,
		TargetID:    targetID,
		Details:     details,
	}
	if err := s.repo.Create(entry); err != nil {
		log.Printf("audit: failed to record %s by admin %d on %s/%s: %v",
			action, adminID, targetTable, targetID, err)
	}
}

func (s *service) List(ctx context.Context, filter repositories.AuditLogFilter) ([]models.AdminActivityLog, int64, error) {
	return s.repo.List(filter)
}
