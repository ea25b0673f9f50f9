package handlers

import (
	"encoding/json"
	"log"

	"datasub/internal/metrics"
	"datasub/internal/services/funding"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// SignatureValidator checks the gateway's webhook signature over the raw
// request body.
type SignatureValidator interface {
	ValidateSignature(body []byte, signature string) bool
}

type WebhookHandler struct {
	fundingService funding.Service
	validator      SignatureValidator
}

func NewWebhookHandler(fundingService funding.Service, validator SignatureValidator) *WebhookHandler {
	return &WebhookHandler{fundingService: fundingService, validator: validator}
}

// Paystack receives gateway webhook events. The signature check runs before
// the payload is parsed; this header is the only authentication on this
// unauthenticated route.
func (h *WebhookHandler) Paystack(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("x-paystack-signature")
	if signature == "" || !h.validator.ValidateSignature(body, signature) {
		metrics.WebhooksRejectedTotal.Inc()
		log.Printf("webhook: rejected delivery with bad signature from %s", c.IP())
		return response.Unauthorized(c)
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference       string `json:"reference"`
			Status          string `json:"status"`
			GatewayResponse string `json:"gateway_response"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return response.BadRequest(c, "invalid payload")
	}

	switch event.Event {
	case "charge.success":
		outcome, err := h.fundingService.SettleSuccess(c.Context(), event.Data.Reference, event.Data.GatewayResponse)
		if err != nil {
			log.Printf("webhook: settlement failed for %s: %v", event.Data.Reference, err)
			// Non-2xx makes the gateway retry; settlement is idempotent so
			// a retry is safe.
			return response.ServerError(c, "settlement failed")
		}
		log.Printf("webhook: %s settled as %s", event.Data.Reference, outcome)
	case "charge.failed":
		if _, err := h.fundingService.SettleFailure(c.Context(), event.Data.Reference, event.Data.GatewayResponse); err != nil {
			log.Printf("webhook: failed to close %s: %v", event.Data.Reference, err)
			return response.ServerError(c, "settlement failed")
		}
	default:
		// Events we don't handle are acknowledged so the gateway stops
		// retrying them.
		log.Printf("webhook: ignoring event %q", event.Event)
	}

	return c.SendStatus(fiber.StatusOK)
}
