package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"datasub/internal/models"
	"datasub/internal/services/funding"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFundingService struct {
	mock.Mock
}

func (m *MockFundingService) Initialize(ctx context.Context, user *models.User, amount float64) (*funding.InitializeResult, error) {
	args := m.Called(ctx, user, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funding.InitializeResult), args.Error(1)
}

func (m *MockFundingService) FundWithCard(ctx context.Context, user *models.User, amount float64, cardToken string) (funding.Outcome, error) {
	args := m.Called(ctx, user, amount, cardToken)
	return args.Get(0).(funding.Outcome), args.Error(1)
}

func (m *MockFundingService) Verify(ctx context.Context, reference string) (funding.Outcome, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(funding.Outcome), args.Error(1)
}

func (m *MockFundingService) SettleSuccess(ctx context.Context, reference, gatewayResponse string) (funding.Outcome, error) {
	args := m.Called(ctx, reference, gatewayResponse)
	return args.Get(0).(funding.Outcome), args.Error(1)
}

func (m *MockFundingService) SettleFailure(ctx context.Context, reference, gatewayResponse string) (funding.Outcome, error) {
	args := m.Called(ctx, reference, gatewayResponse)
	return args.Get(0).(funding.Outcome), args.Error(1)
}

type stubValidator struct {
	valid bool
}

func (v stubValidator) ValidateSignature(body []byte, signature string) bool {
	return v.valid
}

func newWebhookApp(fundingService funding.Service, validator SignatureValidator) *fiber.App {
	app := fiber.New()
	handler := NewWebhookHandler(fundingService, validator)
	app.Post("/api/webhooks/paystack", handler.Paystack)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body string, withSignature bool) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/paystack", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if withSignature {
		req.Header.Set("x-paystack-signature", "aabbcc")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	svc := new(MockFundingService)
	app := newWebhookApp(svc, stubValidator{valid: false})

	resp := postWebhook(t, app, `{"event":"charge.success","data":{"reference":"FND-1"}}`, true)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	svc.AssertNotCalled(t, "SettleSuccess", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_RejectsMissingSignature(t *testing.T) {
	svc := new(MockFundingService)
	// Even a validator that accepts everything never sees an empty header.
	app := newWebhookApp(svc, stubValidator{valid: true})

	resp := postWebhook(t, app, `{"event":"charge.success","data":{"reference":"FND-1"}}`, false)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	svc.AssertNotCalled(t, "SettleSuccess", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_ChargeSuccessSettles(t *testing.T) {
	svc := new(MockFundingService)
	svc.On("SettleSuccess", mock.Anything, "FND-1", "Approved").Return(funding.OutcomeCredited, nil)
	app := newWebhookApp(svc, stubValidator{valid: true})

	resp := postWebhook(t, app, `{"event":"charge.success","data":{"reference":"FND-1","gateway_response":"Approved"}}`, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestWebhook_ChargeFailedClosesFunding(t *testing.T) {
	svc := new(MockFundingService)
	svc.On("SettleFailure", mock.Anything, "FND-1", "Declined").Return(funding.OutcomeMarkedFailed, nil)
	app := newWebhookApp(svc, stubValidator{valid: true})

	resp := postWebhook(t, app, `{"event":"charge.failed","data":{"reference":"FND-1","gateway_response":"Declined"}}`, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestWebhook_UnknownEventAcked(t *testing.T) {
	svc := new(MockFundingService)
	app := newWebhookApp(svc, stubValidator{valid: true})

	resp := postWebhook(t, app, `{"event":"transfer.success","data":{"reference":"TRF-1"}}`, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertNotCalled(t, "SettleSuccess", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "SettleFailure", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_SettlementErrorReturnsNon2xx(t *testing.T) {
	svc := new(MockFundingService)
	svc.On("SettleSuccess", mock.Anything, "FND-1", "").Return(funding.Outcome(""), assert.AnError)
	app := newWebhookApp(svc, stubValidator{valid: true})

	// A retryable failure must not be acked.
	resp := postWebhook(t, app, `{"event":"charge.success","data":{"reference":"FND-1"}}`, true)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
