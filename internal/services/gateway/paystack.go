// Package gateway talks to the external payment processors: the hosted
// payment page provider (Paystack-compatible API) and Stripe for direct
// card charges.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Gateway statuses reported by verification.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
	StatusPending   = "pending"
)

// Config holds gateway credentials.
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client is the Paystack-compatible API client. Amounts cross this boundary
// in naira and are converted to kobo (minor units) here, nowhere else.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// InitResult is the gateway handshake for a hosted payment page.
type InitResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult is the normalized verification outcome for a reference.
type VerifyResult struct {
	Status          string
	Amount          float64 // naira
	Reference       string
	GatewayResponse string
	Channel         string
}

// InitializeTransaction opens a payment session for the given reference.
func (c *Client) InitializeTransaction(ctx context.Context, email string, amount float64, reference, callbackURL string) (*InitResult, error) {
	payload := map[string]interface{}{
		"email":     email,
		"amount":    toKobo(amount),
		"reference": reference,
	}
	if callbackURL != "" {
		payload["callback_url"] = callbackURL
	}

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/transaction/initialize", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, resp.Message)
	}
	return &InitResult{
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
	}, nil
}

// VerifyTransaction fetches the settlement state of a reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Status          string  `json:"status"`
			Amount          float64 `json:"amount"`
			Reference       string  `json:"reference"`
			GatewayResponse string  `json:"gateway_response"`
			Channel         string  `json:"channel"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/transaction/verify/"+reference, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, resp.Message)
	}
	return &VerifyResult{
		Status:          resp.Data.Status,
		Amount:          fromKobo(resp.Data.Amount),
		Reference:       resp.Data.Reference,
		GatewayResponse: resp.Data.GatewayResponse,
		Channel:         resp.Data.Channel,
	}, nil
}

// ValidateSignature checks the webhook HMAC-SHA512 signature over the raw
// request body. Must be called before the payload is even parsed.
func (c *Client) ValidateSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (c *Client) post(ctx context.Context, path string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrReferenceNotFound
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: status %d: %v", ErrGatewayUnavailable, resp.StatusCode, err)
	}
	return nil
}

// toKobo converts naira to the gateway's integer minor units.
func toKobo(naira float64) int64 {
	return int64(naira*100 + 0.5)
}

// fromKobo converts the gateway's minor units back to naira.
func fromKobo(kobo float64) float64 {
	return kobo / 100
}
