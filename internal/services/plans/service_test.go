package plans

import (
	"context"
	"errors"
	"testing"
	"time"

	"datasub/internal/models"
	"datasub/internal/services/vendor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOverrideRepo struct {
	mock.Mock
}

func (m *MockOverrideRepo) Upsert(override *models.PlanOverride) error {
	args := m.Called(override)
	return args.Error(0)
}

func (m *MockOverrideRepo) GetByVendorPlanID(vendorPlanID int) (*models.PlanOverride, error) {
	args := m.Called(vendorPlanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlanOverride), args.Error(1)
}

func (m *MockOverrideRepo) All() ([]models.PlanOverride, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlanOverride), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FetchAccount(ctx context.Context) (*vendor.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vendor.Account), args.Error(1)
}

type MockCache struct {
	mock.Mock
	stored []vendor.Plan
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key)
	if args.Bool(0) {
		*dest.(*[]vendor.Plan) = m.stored
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	if plans, ok := value.([]vendor.Plan); ok {
		m.stored = plans
	}
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Log(ctx context.Context, adminID uint, action, targetTable, targetID string, details models.JSON) {
	m.Called(ctx, adminID, action, targetTable, targetID, details)
}

func vendorAccount() *vendor.Account {
	return &vendor.Account{
		Username: "reseller",
		Balance:  10000,
		Plans: []vendor.Plan{
			{ID: 7, Network: 1, NetworkName: "MTN", Size: "1.0 GB", Validity: "30 days", Amount: 250},
			{ID: 8, Network: 1, NetworkName: "MTN", Size: "2.0 GB", Validity: "30 days", Amount: 500},
			{ID: 21, Network: 2, NetworkName: "GLO", Size: "1.0 GB", Validity: "14 days", Amount: 200},
		},
	}
}

func TestCatalog_MarkupAndVisibility(t *testing.T) {
	repo := new(MockOverrideRepo)
	catalog := new(MockCatalog)

	catalog.On("FetchAccount", mock.Anything).Return(vendorAccount(), nil)
	repo.On("All").Return([]models.PlanOverride{
		{VendorPlanID: 7, Markup: 50, Enabled: true},
		{VendorPlanID: 8, Markup: 100, Enabled: false},
	}, nil)

	s := NewService(repo, catalog, nil, nil)

	t.Run("user view applies markup and hides disabled plans and cost", func(t *testing.T) {
		plans, err := s.Catalog(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, plans, 2) // plan 8 is disabled

		byID := map[int]models.DataPlan{}
		for _, p := range plans {
			byID[p.VendorPlanID] = p
		}
		assert.Equal(t, 300.0, byID[7].SellingPrice) // 250 + 50 markup
		assert.Equal(t, 0.0, byID[7].CostPrice)      // hidden from users
		assert.Equal(t, 200.0, byID[21].SellingPrice)
	})

	t.Run("admin view keeps disabled plans and cost prices", func(t *testing.T) {
		plans, err := s.Catalog(context.Background(), true)
		require.NoError(t, err)
		require.Len(t, plans, 3)

		byID := map[int]models.DataPlan{}
		for _, p := range plans {
			byID[p.VendorPlanID] = p
		}
		assert.False(t, byID[8].Enabled)
		assert.Equal(t, 250.0, byID[7].CostPrice)
		assert.Equal(t, 600.0, byID[8].SellingPrice)
	})
}

func TestCatalog_SortedByNetworkThenPrice(t *testing.T) {
	repo := new(MockOverrideRepo)
	catalog := new(MockCatalog)

	catalog.On("FetchAccount", mock.Anything).Return(vendorAccount(), nil)
	repo.On("All").Return([]models.PlanOverride{}, nil)

	s := NewService(repo, catalog, nil, nil)
	plans, err := s.Catalog(context.Background(), true)
	require.NoError(t, err)

	require.Len(t, plans, 3)
	assert.Equal(t, 7, plans[0].VendorPlanID)  // MTN 250
	assert.Equal(t, 8, plans[1].VendorPlanID)  // MTN 500
	assert.Equal(t, 21, plans[2].VendorPlanID) // GLO 200
}

func TestCatalog_CacheAside(t *testing.T) {
	repo := new(MockOverrideRepo)
	catalog := new(MockCatalog)
	cache := new(MockCache)

	repo.On("All").Return([]models.PlanOverride{}, nil)
	cache.On("Get", mock.Anything, catalogCacheKey).Return(false, nil).Once()
	catalog.On("FetchAccount", mock.Anything).Return(vendorAccount(), nil).Once()
	cache.On("SetWithTTL", mock.Anything, catalogCacheKey, catalogCacheTTL).Return(nil).Once()
	cache.On("Get", mock.Anything, catalogCacheKey).Return(true, nil)

	s := NewService(repo, catalog, cache, nil)

	_, err := s.Catalog(context.Background(), true)
	require.NoError(t, err)
	_, err = s.Catalog(context.Background(), true)
	require.NoError(t, err)

	// The second call is served from cache.
	catalog.AssertNumberOfCalls(t, "FetchAccount", 1)
}

func TestSellingPlan(t *testing.T) {
	repo := new(MockOverrideRepo)
	catalog := new(MockCatalog)

	catalog.On("FetchAccount", mock.Anything).Return(vendorAccount(), nil)
	repo.On("All").Return([]models.PlanOverride{
		{VendorPlanID: 7, Markup: 50, Enabled: true},
		{VendorPlanID: 8, Markup: 0, Enabled: false},
	}, nil)

	s := NewService(repo, catalog, nil, nil)

	t.Run("enabled plan with markup", func(t *testing.T) {
		plan, err := s.SellingPlan(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, 300.0, plan.SellingPrice)
		assert.Equal(t, "MTN", plan.NetworkName)
	})

	t.Run("disabled plan", func(t *testing.T) {
		_, err := s.SellingPlan(context.Background(), 8)
		assert.ErrorIs(t, err, ErrPlanDisabled)
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := s.SellingPlan(context.Background(), 999)
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}

func TestSaveOverride(t *testing.T) {
	t.Run("upserts, invalidates cache and audits", func(t *testing.T) {
		repo := new(MockOverrideRepo)
		catalog := new(MockCatalog)
		cache := new(MockCache)
		auditor := new(MockAuditor)

		repo.On("Upsert", mock.MatchedBy(func(o *models.PlanOverride) bool {
			return o.VendorPlanID == 7 && o.Markup == 75 && o.Enabled && o.UpdatedBy == 8
		})).Return(nil)
		cache.On("Delete", mock.Anything, []string{catalogCacheKey}).Return(nil)
		auditor.On("Log", mock.Anything, uint(8), models.AuditActionPlanOverrideSaved,
			"plan_overrides", "7", mock.Anything).Return()

		s := NewService(repo, catalog, cache, auditor)
		override, err := s.SaveOverride(context.Background(), 8, 7, 75, true)

		require.NoError(t, err)
		assert.Equal(t, 75.0, override.Markup)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
		auditor.AssertExpectations(t)
	})

	t.Run("negative markup rejected", func(t *testing.T) {
		repo := new(MockOverrideRepo)
		catalog := new(MockCatalog)

		s := NewService(repo, catalog, nil, nil)
		_, err := s.SaveOverride(context.Background(), 8, 7, -10, true)
		assert.ErrorIs(t, err, ErrInvalidMarkup)
		repo.AssertNotCalled(t, "Upsert", mock.Anything)
	})
}

func TestCatalog_VendorDown(t *testing.T) {
	repo := new(MockOverrideRepo)
	catalog := new(MockCatalog)

	catalog.On("FetchAccount", mock.Anything).Return(nil, errors.New("connection refused"))

	s := NewService(repo, catalog, nil, nil)
	_, err := s.Catalog(context.Background(), false)
	assert.Error(t, err)
}
