package repositories

import (
	"errors"

	"datasub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrOverrideNotFound = errors.New("plan override not found")

// PlanOverrideRepository defines persistence for per-plan pricing overrides.
type PlanOverrideRepository interface {
	Upsert(override *models.PlanOverride) error
	GetByVendorPlanID(vendorPlanID int) (*models.PlanOverride, error)
	All() ([]models.PlanOverride, error)
}

type planOverrideRepository struct {
	db *gorm.DB
}

func NewPlanOverrideRepository(db *gorm.DB) PlanOverrideRepository {
	return &planOverrideRepository{db: db}
}

func (r *planOverrideRepository) Upsert(override *models.PlanOverride) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vendor_plan_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"markup", "enabled", "updated_by", "updated_at"}),
	}).Create(override).Error
}

func (r *planOverrideRepository) GetByVendorPlanID(vendorPlanID int) (*models.PlanOverride, error) {
	var override models.PlanOverride
	if err := r.db.Where("vendor_plan_id = ?", vendorPlanID).First(&override).Error; err != nil {
		return nil, translateError(err, ErrOverrideNotFound)
	}
	return &override, nil
}

func (r *planOverrideRepository) All() ([]models.PlanOverride, error) {
	var overrides []models.PlanOverride
	err := r.db.Find(&overrides).Error
	return overrides, err
}
