package controllers

import (
	"errors"
	"net/http"

	"github.com/nivedh-m/VendorSphere/gateways"
	"github.com/nivedh-m/VendorSphere/payments"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Orchestrator processes checkout payments. Wired in routes.SetupRouter.
var Orchestrator *payments.Orchestrator

// StripeIntents pre-initializes hosted-card client secrets. Wired in
// routes.SetupRouter.
var StripeIntents *gateways.StripeGateway

// POST /v1/payments/:gateway
func ProcessPayment(c *gin.Context) {
	gatewayID := c.Param("gateway")
	utils.LogInfo("ProcessPayment called for gateway: %s", gatewayID)

	var req gateways.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid payment request: %v", err)
		utils.BadRequest(c, "Invalid request. order_id and amount are required", err.Error())
		return
	}

	outcome, err := Orchestrator.ProcessPayment(c.Request.Context(), gatewayID, req)
	if err != nil {
		var fieldErr *gateways.FieldError
		switch {
		case errors.Is(err, payments.ErrUnknownGateway):
			utils.LogError("Unknown gateway requested: %s", gatewayID)
			utils.BadRequest(c, "Unknown payment gateway", gin.H{"gateway": gatewayID})
		case errors.Is(err, payments.ErrOrderNotFound):
			utils.NotFound(c, "Order not found")
		case errors.Is(err, payments.ErrOrderAlreadyPaid):
			utils.Conflict(c, "Payment for this order has already been completed", nil)
		case errors.Is(err, payments.ErrAmountMismatch):
			utils.BadRequest(c, "Amount does not match order total", nil)
		case errors.As(err, &fieldErr):
			utils.LogError("Payment validation failed: %v", err)
			utils.BadRequest(c, "Missing required field", gin.H{"field": fieldErr.Field})
		default:
			utils.LogError("Payment processing failed: %v", err)
			utils.InternalServerError(c, "Failed to process payment", err.Error())
		}
		return
	}

	switch outcome.Kind {
	case gateways.OutcomeCompleted:
		utils.Success(c, "Payment completed successfully", outcome)
	case gateways.OutcomeRedirectRequired:
		utils.Success(c, "Redirect to payment provider to complete payment", outcome)
	default:
		// Provider-side failure (decline, network error, timeout). The attempt
		// is already recorded; the outcome rides along so the client can show
		// the reason code.
		c.JSON(http.StatusInternalServerError, utils.StandardResponse{
			Status:  "error",
			Message: "Payment failed",
			Data:    outcome,
		})
	}
}

// POST /v1/payments/intents
func CreatePaymentIntent(c *gin.Context) {
	utils.LogInfo("CreatePaymentIntent called")

	var req struct {
		Amount   decimal.Decimal `json:"amount" binding:"required"`
		Currency string          `json:"currency"`
		OrderID  string          `json:"order_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid intent request: %v", err)
		utils.BadRequest(c, "Invalid request. amount is required", err.Error())
		return
	}

	clientSecret, err := StripeIntents.CreateIntent(c.Request.Context(), req.Amount, req.Currency, req.OrderID)
	if err != nil {
		var fieldErr *gateways.FieldError
		if errors.As(err, &fieldErr) {
			utils.BadRequest(c, "Missing required field", gin.H{"field": fieldErr.Field})
			return
		}
		utils.LogError("Failed to create payment intent: %v", err)
		utils.InternalServerError(c, "Failed to create payment intent", err.Error())
		return
	}

	utils.Success(c, "Payment intent created", gin.H{"client_secret": clientSecret})
}
