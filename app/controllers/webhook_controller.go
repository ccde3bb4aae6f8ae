package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/ingest"
)

// ============================================================================
// WEBHOOK CONTROLLER
// ============================================================================

// WebhookProcessor runs one inbound webhook through the ingestion pipeline.
type WebhookProcessor interface {
	Process(ctx context.Context, req ingest.Request) (*ingest.Outcome, error)
}

// WebhookController receives payment platform and relay webhooks.
type WebhookController struct {
	processor WebhookProcessor
	timeout   time.Duration
}

// NewWebhookController creates a webhook controller.
func NewWebhookController(processor WebhookProcessor) *WebhookController {
	return &WebhookController{processor: processor, timeout: 15 * time.Second}
}

// HandleWebhook serves POST /webhooks/integrations and POST /webhooks/:source.
func (wc *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	sourceParam := c.Query("source")
	if sourceParam == "" {
		sourceParam = c.Params("source")
	}

	req := ingest.Request{
		SourceParam: sourceParam,
		Headers:     ingest.NewHeaders(c.GetReqHeaders()),
		Body:        append([]byte(nil), c.Body()...),
		ClientIP:    clientIP(c),
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), wc.timeout)
	defer cancel()

	outcome, err := wc.processor.Process(ctx, req)
	switch {
	case errors.Is(err, ingest.ErrInvalidSignature):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid signature"})
	case err != nil:
		log.Errorf("[Webhook] Processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Processing failed"})
	case outcome.Ignored:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "ignored": true, "event": outcome.EventType})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":        true,
		"transaction_id": outcome.Transaction.ExternalID,
		"status":         outcome.Transaction.Status,
	})
}
