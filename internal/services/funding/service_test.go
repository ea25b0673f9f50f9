package funding

import (
	"context"
	"errors"
	"testing"

	"datasub/internal/models"
	"datasub/internal/repositories"
	"datasub/internal/services/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFundingRepo struct {
	mock.Mock
	ops *MockSettlementOps
}

func (m *MockFundingRepo) Create(funding *models.WalletFunding) error {
	args := m.Called(funding)
	if args.Error(0) == nil {
		funding.ID = 10
	}
	return args.Error(0)
}

func (m *MockFundingRepo) GetByReference(reference string) (*models.WalletFunding, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletFunding), args.Error(1)
}

func (m *MockFundingRepo) ListByUser(userID uint, offset, limit int) ([]models.WalletFunding, int64, error) {
	args := m.Called(userID, offset, limit)
	return nil, 0, args.Error(2)
}

// InSettlement runs the callback against the mock ops, mirroring the real
// repository handing transaction-scoped ops to the service.
func (m *MockFundingRepo) InSettlement(fn func(ops repositories.SettlementOps) error) error {
	m.Called()
	return fn(m.ops)
}

type MockSettlementOps struct {
	mock.Mock
}

func (m *MockSettlementOps) CompleteIfPending(reference, gatewayResponse string) (bool, error) {
	args := m.Called(reference, gatewayResponse)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementOps) FailIfPending(reference, gatewayResponse string) (bool, error) {
	args := m.Called(reference, gatewayResponse)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementOps) TransactionExistsByReference(reference string) (bool, error) {
	args := m.Called(reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementOps) CreateTransaction(tx *models.Transaction) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *MockSettlementOps) CreditWallet(userID uint, amount float64) error {
	args := m.Called(userID, amount)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) InitializeTransaction(ctx context.Context, email string, amount float64, reference, callbackURL string) (*gateway.InitResult, error) {
	args := m.Called(ctx, email, amount, reference, callbackURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitResult), args.Error(1)
}

func (m *MockGateway) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.VerifyResult), args.Error(1)
}

type MockCharger struct {
	mock.Mock
}

func (m *MockCharger) ChargeCard(token string, amount float64, reference, description string) (string, error) {
	args := m.Called(token, amount, reference, description)
	return args.String(0), args.Error(1)
}

func newMocks() (*MockFundingRepo, *MockSettlementOps, *MockGateway) {
	ops := new(MockSettlementOps)
	repo := &MockFundingRepo{ops: ops}
	gw := new(MockGateway)
	return repo, ops, gw
}

func pendingFunding(reference string) *models.WalletFunding {
	return &models.WalletFunding{
		ID:               10,
		UserID:           1,
		Amount:           500,
		PaymentMethod:    models.PaymentMethodPaystack,
		Status:           models.FundingStatusPending,
		PaymentReference: reference,
	}
}

func TestSettleSuccess_CreditsOnce(t *testing.T) {
	repo, ops, gw := newMocks()

	repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
	repo.On("InSettlement").Return(nil)
	ops.On("CompleteIfPending", "FND-1", "Approved").Return(true, nil)
	ops.On("TransactionExistsByReference", "FND-1").Return(false, nil)
	ops.On("CreateTransaction", mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Type == models.TransactionTypeWalletFunding &&
			tx.Status == models.StatusCompleted &&
			tx.Amount == 500 &&
			tx.PaymentReference != nil && *tx.PaymentReference == "FND-1"
	})).Return(nil)
	ops.On("CreditWallet", uint(1), 500.0).Return(nil)

	s := NewService(repo, gw, nil, "")
	outcome, err := s.SettleSuccess(context.Background(), "FND-1", "Approved")

	require.NoError(t, err)
	assert.Equal(t, OutcomeCredited, outcome)
	ops.AssertExpectations(t)
	ops.AssertNumberOfCalls(t, "CreditWallet", 1)
}

func TestSettleSuccess_SecondAttemptIsNoOp(t *testing.T) {
	repo, ops, gw := newMocks()

	repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
	repo.On("InSettlement").Return(nil)
	// The conditional update loses: another settlement already completed it.
	ops.On("CompleteIfPending", "FND-1", "Approved").Return(false, nil)

	s := NewService(repo, gw, nil, "")
	outcome, err := s.SettleSuccess(context.Background(), "FND-1", "Approved")

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome)
	ops.AssertNotCalled(t, "CreateTransaction", mock.Anything)
	ops.AssertNotCalled(t, "CreditWallet", mock.Anything, mock.Anything)
}

func TestSettleSuccess_ExistingTransactionSkipsCredit(t *testing.T) {
	repo, ops, gw := newMocks()

	repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
	repo.On("InSettlement").Return(nil)
	ops.On("CompleteIfPending", "FND-1", "Approved").Return(true, nil)
	ops.On("TransactionExistsByReference", "FND-1").Return(true, nil)

	s := NewService(repo, gw, nil, "")
	outcome, err := s.SettleSuccess(context.Background(), "FND-1", "Approved")

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome)
	ops.AssertNotCalled(t, "CreditWallet", mock.Anything, mock.Anything)
}

func TestSettleSuccess_DuplicateInsertSkipsCredit(t *testing.T) {
	repo, ops, gw := newMocks()

	repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
	repo.On("InSettlement").Return(nil)
	ops.On("CompleteIfPending", "FND-1", "Approved").Return(true, nil)
	ops.On("TransactionExistsByReference", "FND-1").Return(false, nil)
	// The unique payment reference catches a race the existence check missed.
	ops.On("CreateTransaction", mock.Anything).Return(repositories.ErrDuplicateKey)

	s := NewService(repo, gw, nil, "")
	outcome, err := s.SettleSuccess(context.Background(), "FND-1", "Approved")

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome)
	ops.AssertNotCalled(t, "CreditWallet", mock.Anything, mock.Anything)
}

func TestSettleSuccess_CreditFailureFailsSettlement(t *testing.T) {
	repo, ops, gw := newMocks()

	repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
	repo.On("InSettlement").Return(nil)
	ops.On("CompleteIfPending", "FND-1", "Approved").Return(true, nil)
	ops.On("TransactionExistsByReference", "FND-1").Return(false, nil)
	ops.On("CreateTransaction", mock.Anything).Return(nil)
	ops.On("CreditWallet", uint(1), 500.0).Return(errors.New("deadlock"))

	s := NewService(repo, gw, nil, "")
	_, err := s.SettleSuccess(context.Background(), "FND-1", "Approved")
	assert.Error(t, err)
}

func TestSettleSuccess_UnknownReference(t *testing.T) {
	repo, _, gw := newMocks()
	repo.On("GetByReference", "FND-missing").Return(nil, repositories.ErrFundingNotFound)

	s := NewService(repo, gw, nil, "")
	_, err := s.SettleSuccess(context.Background(), "FND-missing", "Approved")
	assert.ErrorIs(t, err, ErrFundingNotFound)
}

func TestSettleFailure(t *testing.T) {
	repo, ops, gw := newMocks()

	repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
	repo.On("InSettlement").Return(nil)
	ops.On("FailIfPending", "FND-1", "Declined").Return(true, nil)

	s := NewService(repo, gw, nil, "")
	outcome, err := s.SettleFailure(context.Background(), "FND-1", "Declined")

	require.NoError(t, err)
	assert.Equal(t, OutcomeMarkedFailed, outcome)
}

func TestSettleFailure_AlreadyClosed(t *testing.T) {
	repo, ops, gw := newMocks()

	repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
	repo.On("InSettlement").Return(nil)
	ops.On("FailIfPending", "FND-1", "Declined").Return(false, nil)

	s := NewService(repo, gw, nil, "")
	outcome, err := s.SettleFailure(context.Background(), "FND-1", "Declined")

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome)
}

func TestVerify_Statuses(t *testing.T) {
	t.Run("success settles", func(t *testing.T) {
		repo, ops, gw := newMocks()
		gw.On("VerifyTransaction", mock.Anything, "FND-1").Return(&gateway.VerifyResult{
			Status:          gateway.StatusSuccess,
			GatewayResponse: "Approved",
		}, nil)
		repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
		repo.On("InSettlement").Return(nil)
		ops.On("CompleteIfPending", "FND-1", "Approved").Return(true, nil)
		ops.On("TransactionExistsByReference", "FND-1").Return(false, nil)
		ops.On("CreateTransaction", mock.Anything).Return(nil)
		ops.On("CreditWallet", uint(1), 500.0).Return(nil)

		s := NewService(repo, gw, nil, "")
		outcome, err := s.Verify(context.Background(), "FND-1")
		require.NoError(t, err)
		assert.Equal(t, OutcomeCredited, outcome)
	})

	t.Run("abandoned marks failed", func(t *testing.T) {
		repo, ops, gw := newMocks()
		gw.On("VerifyTransaction", mock.Anything, "FND-1").Return(&gateway.VerifyResult{
			Status:          gateway.StatusAbandoned,
			GatewayResponse: "Abandoned",
		}, nil)
		repo.On("GetByReference", "FND-1").Return(pendingFunding("FND-1"), nil)
		repo.On("InSettlement").Return(nil)
		ops.On("FailIfPending", "FND-1", "Abandoned").Return(true, nil)

		s := NewService(repo, gw, nil, "")
		outcome, err := s.Verify(context.Background(), "FND-1")
		require.NoError(t, err)
		assert.Equal(t, OutcomeMarkedFailed, outcome)
	})

	t.Run("pending leaves everything alone", func(t *testing.T) {
		repo, _, gw := newMocks()
		gw.On("VerifyTransaction", mock.Anything, "FND-1").Return(&gateway.VerifyResult{
			Status: gateway.StatusPending,
		}, nil)

		s := NewService(repo, gw, nil, "")
		outcome, err := s.Verify(context.Background(), "FND-1")
		require.NoError(t, err)
		assert.Equal(t, OutcomePending, outcome)
		repo.AssertNotCalled(t, "InSettlement")
	})

	t.Run("unknown status mutates nothing", func(t *testing.T) {
		repo, _, gw := newMocks()
		gw.On("VerifyTransaction", mock.Anything, "FND-1").Return(&gateway.VerifyResult{
			Status: "reversed",
		}, nil)

		s := NewService(repo, gw, nil, "")
		_, err := s.Verify(context.Background(), "FND-1")
		assert.ErrorIs(t, err, ErrUnknownGatewayStatus)
		repo.AssertNotCalled(t, "InSettlement")
	})

	t.Run("unknown reference", func(t *testing.T) {
		repo, _, gw := newMocks()
		gw.On("VerifyTransaction", mock.Anything, "FND-x").Return(nil, gateway.ErrReferenceNotFound)

		s := NewService(repo, gw, nil, "")
		_, err := s.Verify(context.Background(), "FND-x")
		assert.ErrorIs(t, err, ErrFundingNotFound)
	})
}

func TestInitialize(t *testing.T) {
	user := &models.User{Email: "user@example.com"}
	user.ID = 1

	t.Run("below minimum amount", func(t *testing.T) {
		repo, _, gw := newMocks()
		s := NewService(repo, gw, nil, "")
		_, err := s.Initialize(context.Background(), user, 50)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		repo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("successful handshake", func(t *testing.T) {
		repo, _, gw := newMocks()
		repo.On("Create", mock.MatchedBy(func(f *models.WalletFunding) bool {
			return f.Status == models.FundingStatusPending && f.Amount == 500
		})).Return(nil)
		gw.On("InitializeTransaction", mock.Anything, "user@example.com", 500.0, mock.Anything, "https://app.example/callback").
			Return(&gateway.InitResult{AuthorizationURL: "https://pay.example/x"}, nil)

		s := NewService(repo, gw, nil, "https://app.example/callback")
		result, err := s.Initialize(context.Background(), user, 500)
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/x", result.AuthorizationURL)
		assert.NotEmpty(t, result.Reference)
	})

	t.Run("gateway failure closes the funding", func(t *testing.T) {
		repo, ops, gw := newMocks()
		repo.On("Create", mock.Anything).Return(nil)
		gw.On("InitializeTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, gateway.ErrGatewayUnavailable)
		repo.On("GetByReference", mock.Anything).Return(pendingFunding("FND-dead"), nil)
		repo.On("InSettlement").Return(nil)
		ops.On("FailIfPending", mock.Anything, mock.Anything).Return(true, nil)

		s := NewService(repo, gw, nil, "")
		_, err := s.Initialize(context.Background(), user, 500)
		assert.ErrorIs(t, err, gateway.ErrGatewayUnavailable)
		ops.AssertCalled(t, "FailIfPending", mock.Anything, mock.Anything)
	})
}

func TestFundWithCard(t *testing.T) {
	user := &models.User{Email: "user@example.com"}
	user.ID = 1

	t.Run("channel disabled without charger", func(t *testing.T) {
		repo, _, gw := newMocks()
		s := NewService(repo, gw, nil, "")
		_, err := s.FundWithCard(context.Background(), user, 500, "tok_visa")
		assert.ErrorIs(t, err, ErrCardChannelDisabled)
	})

	t.Run("charge then settle synchronously", func(t *testing.T) {
		repo, ops, gw := newMocks()
		charger := new(MockCharger)

		repo.On("Create", mock.MatchedBy(func(f *models.WalletFunding) bool {
			return f.PaymentMethod == models.PaymentMethodCard
		})).Return(nil)
		charger.On("ChargeCard", "tok_visa", 500.0, mock.Anything, mock.Anything).Return("ch_123", nil)
		repo.On("GetByReference", mock.Anything).Return(pendingFunding("FND-card"), nil)
		repo.On("InSettlement").Return(nil)
		ops.On("CompleteIfPending", mock.Anything, mock.Anything).Return(true, nil)
		ops.On("TransactionExistsByReference", mock.Anything).Return(false, nil)
		ops.On("CreateTransaction", mock.Anything).Return(nil)
		ops.On("CreditWallet", uint(1), 500.0).Return(nil)

		s := NewService(repo, gw, charger, "")
		outcome, err := s.FundWithCard(context.Background(), user, 500, "tok_visa")
		require.NoError(t, err)
		assert.Equal(t, OutcomeCredited, outcome)
		charger.AssertExpectations(t)
	})

	t.Run("declined charge closes the funding", func(t *testing.T) {
		repo, ops, gw := newMocks()
		charger := new(MockCharger)

		repo.On("Create", mock.Anything).Return(nil)
		charger.On("ChargeCard", "tok_bad", 500.0, mock.Anything, mock.Anything).
			Return("", gateway.ErrCardChargeFailed)
		repo.On("GetByReference", mock.Anything).Return(pendingFunding("FND-card"), nil)
		repo.On("InSettlement").Return(nil)
		ops.On("FailIfPending", mock.Anything, mock.Anything).Return(true, nil)

		s := NewService(repo, gw, charger, "")
		outcome, err := s.FundWithCard(context.Background(), user, 500, "tok_bad")
		assert.ErrorIs(t, err, gateway.ErrCardChargeFailed)
		assert.Equal(t, OutcomeMarkedFailed, outcome)
		ops.AssertNotCalled(t, "CreditWallet", mock.Anything, mock.Anything)
	})
}
