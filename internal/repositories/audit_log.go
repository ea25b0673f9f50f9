package repositories

import (
	"datasub/internal/models"

	"gorm.io/gorm"
)

// AuditLogFilter narrows audit trail listings.
type AuditLogFilter struct {
	AdminID uint
	Action  string
	Offset  int
	Limit   int
}

// AuditLogRepository is the append-only admin activity trail. There is
// deliberately no update or delete.
type AuditLogRepository interface {
	Create(entry *models.AdminActivityLog) error
	List(filter AuditLogFilter) ([]models.AdminActivityLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(entry *models.AdminActivityLog) error {
	return r.db.Create(entry).Error
}

func (r *auditLogRepository) List(filter AuditLogFilter) ([]models.AdminActivityLog, int64, error) {
	var entries []models.AdminActivityLog
	var total int64

	query := r.db.Model(&models.AdminActivityLog{})
	if filter.AdminID != 0 {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	err := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}
