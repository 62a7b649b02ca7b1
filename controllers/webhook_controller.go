package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/nivedh-m/VendorSphere/gateways"
	"github.com/nivedh-m/VendorSphere/payments"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
)

// Ingestor drives order transitions from provider callbacks. Wired in
// routes.SetupRouter.
var Ingestor *payments.Ingestor

// POST /v1/payments/webhook/:provider
func HandlePaymentWebhook(c *gin.Context) {
	providerID := c.Param("provider")
	utils.LogInfo("Payment webhook received for provider: %s", providerID)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		c.String(http.StatusBadRequest, "failed to read request body")
		return
	}

	ack, err := Ingestor.Ingest(c.Request.Context(), providerID, gateways.WebhookRequest{
		Body:     body,
		Header:   c.Request.Header,
		SourceIP: c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrUnknownGateway):
			c.String(http.StatusNotFound, "unknown provider")
		case errors.Is(err, gateways.ErrWebhookAuthenticity), errors.Is(err, payments.ErrWebhookAmountMismatch):
			// The caller is an untrusted external party; no detail beyond the
			// rejection status.
			c.String(http.StatusUnauthorized, "verification failed")
		default:
			utils.LogError("Webhook ingestion error for %s: %v", providerID, err)
			c.String(http.StatusBadRequest, "webhook error")
		}
		return
	}

	// Answer with whatever acknowledgement shape this provider expects so it
	// stops retrying.
	if ack.JSON != nil {
		c.JSON(ack.Status, ack.JSON)
		return
	}
	c.String(ack.Status, ack.Body)
}
