// Package plans serves the merged data plan catalog: vendor plans with the
// locally controlled markup and enabled flag applied.
package plans

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"datasub/internal/models"
	"datasub/internal/repositories"
	"datasub/internal/services/vendor"
)

const (
	catalogCacheKey = "plans:catalog"
	catalogCacheTTL = 10 * time.Minute
)

// VendorCatalog fetches the upstream plan catalog.
type VendorCatalog interface {
	FetchAccount(ctx context.Context) (*vendor.Account, error)
}

// Cache is the slice of the cache service the catalog needs.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Auditor records admin actions.
type Auditor interface {
	Log(ctx context.Context, adminID uint, action, targetTable, targetID string, details models.JSON)
}

// Service merges vendor plans and local overrides.
type Service interface {
	// Catalog returns plans for display. Admin view includes disabled
	// plans and cost prices; user view hides both.
	Catalog(ctx context.Context, adminView bool) ([]models.DataPlan, error)
	// SellingPlan resolves one enabled plan by vendor id, for purchase
	// validation.
	SellingPlan(ctx context.Context, vendorPlanID int) (*models.DataPlan, error)
	// SaveOverride upserts a plan's markup and enabled flag.
	SaveOverride(ctx context.Context, adminID uint, vendorPlanID int, markup float64, enabled bool) (*models.PlanOverride, error)
}

type service struct {
	overrides repositories.PlanOverrideRepository
	catalog   VendorCatalog
	cache     Cache
	auditor   Auditor
}

func NewService(overrides repositories.PlanOverrideRepository, catalog VendorCatalog, cache Cache, auditor Auditor) Service {
	if overrides == nil {
		panic("override repository is required")
	}
	if catalog == nil {
		panic("vendor catalog is required")
	}
	return &service{overrides: overrides, catalog: catalog, cache: cache, auditor: auditor}
}

func (s *service) Catalog(ctx context.Context, adminView bool) ([]models.DataPlan, error) {
	merged, err := s.mergedCatalog(ctx)
	if err != nil {
		return nil, err
	}

	plans := make([]models.DataPlan, 0, len(merged))
	for _, p := range merged {
		if !adminView {
			if !p.Enabled {
				continue
			}
			p.CostPrice = 0 // vendor pricing is not for end users
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (s *service) SellingPlan(ctx context.Context, vendorPlanID int) (*models.DataPlan, error) {
	merged, err := s.mergedCatalog(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range merged {
		if p.VendorPlanID == vendorPlanID {
			if !p.Enabled {
				return nil, ErrPlanDisabled
			}
			return &p, nil
		}
	}
	return nil, ErrPlanNotFound
}

func (s *service) SaveOverride(ctx context.Context, adminID uint, vendorPlanID int, markup float64, enabled bool) (*models.PlanOverride, error) {
	if markup < 0 {
		return nil, ErrInvalidMarkup
	}
	override := &models.PlanOverride{
		VendorPlanID: vendorPlanID,
		Markup:       markup,
		Enabled:      enabled,
		UpdatedBy:    adminID,
	}
	if err := s.overrides.Upsert(override); err != nil {
		return nil, fmt.Errorf("failed to save override: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
			log.Printf("plans: failed to invalidate catalog cache: %v", err)
		}
	}
	if s.auditor != nil {
		s.auditor.Log(ctx, adminID, models.AuditActionPlanOverrideSaved, "plan_overrides",
			fmt.Sprintf("%d", vendorPlanID), models.JSON{
				"markup":  markup,
				"enabled": enabled,
			})
	}
	return override, nil
}

// mergedCatalog loads vendor plans (cache-aside) and applies overrides.
func (s *service) mergedCatalog(ctx context.Context) ([]models.DataPlan, error) {
	var vendorPlans []vendor.Plan
	cached := false
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, catalogCacheKey, &vendorPlans); err == nil && hit {
			cached = true
		}
	}
	if !cached {
		account, err := s.catalog.FetchAccount(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch vendor catalog: %w", err)
		}
		vendorPlans = account.Plans
		if s.cache != nil {
			if err := s.cache.SetWithTTL(ctx, catalogCacheKey, vendorPlans, catalogCacheTTL); err != nil {
				log.Printf("plans: failed to cache catalog: %v", err)
			}
		}
	}

	overrides, err := s.overrides.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	byPlan := make(map[int]models.PlanOverride, len(overrides))
	for _, o := range overrides {
		byPlan[o.VendorPlanID] = o
	}

	merged := make([]models.DataPlan, 0, len(vendorPlans))
	for _, vp := range vendorPlans {
		plan := models.DataPlan{
			VendorPlanID: vp.ID,
			NetworkCode:  vp.Network,
			NetworkName:  vp.NetworkName,
			Name:         fmt.Sprintf("%s %s", vp.NetworkName, vp.Size),
			DataSize:     vp.Size,
			Duration:     vp.Validity,
			CostPrice:    vp.Amount,
			SellingPrice: vp.Amount,
			Enabled:      true,
		}
		if o, ok := byPlan[vp.ID]; ok {
			plan.SellingPrice = vp.Amount + o.Markup
			plan.Enabled = o.Enabled
		}
		merged = append(merged, plan)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].NetworkCode != merged[j].NetworkCode {
			return merged[i].NetworkCode < merged[j].NetworkCode
		}
		return merged[i].SellingPrice < merged[j].SellingPrice
	})
	return merged, nil
}
