package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/gateway"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/http/middleware"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

type initializePaymentRequest struct {
	BookingID int64  `json:"bookingId" binding:"required"`
	Provider  string `json:"provider" binding:"required"`
	ReturnURL string `json:"returnUrl"`
}

// POST /api/payments/initialize
func (h Handlers) InitializePayment(c *gin.Context) {
	var req initializePaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := h.Payments
	svc.RequestID = middleware.GetRequestID(c)

	result, err := svc.InitializePayment(c.Request.Context(), req.BookingID, strings.ToLower(req.Provider), req.ReturnURL)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/payments/verify/:reference?provider=
//
// Client-initiated verification after the redirect back from the
// provider. Safe to call repeatedly; a settled reference reports its
// final state instead of reprocessing.
func (h Handlers) VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")
	provider := strings.ToLower(c.Query("provider"))
	if provider == "" {
		provider = gateway.ProviderPaystack
	}

	svc := h.Payments
	svc.RequestID = middleware.GetRequestID(c)

	booking, err := svc.VerifyAndReconcile(c.Request.Context(), reference, provider)
	if err != nil {
		if domain.IsAlreadyProcessed(err) {
			c.JSON(http.StatusOK, gin.H{
				"booking": booking,
				"message": "payment already processed",
			})
			return
		}
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// POST /api/webhooks/paystack
//
// Signature is checked against the raw body before anything is parsed.
// After a valid signature the response is always 200 so the provider
// stops retrying; the event body itself is only used to pick which
// reference to re-verify against the provider's API.
func (h Handlers) PaystackWebhook(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "could not read request body", nil)
		return
	}

	g, err := h.Payments.Gateways.Get(gateway.ProviderPaystack)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !g.ValidateWebhookSignature(body, c.GetHeader("x-paystack-signature")) {
		utils.LogEvent(requestID, "webhook", "paystack", "rejected: bad signature")
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid webhook signature", nil)
		return
	}

	var event paystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.LogEvent(requestID, "webhook", "paystack", "unparsable body, acknowledged")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	switch event.Event {
	case "charge.success", "charge.failed":
		h.reconcileFromWebhook(c, event.Data.Reference, gateway.ProviderPaystack, requestID)
	default:
		utils.LogEvent(requestID, "webhook", "paystack", "ignored event "+event.Event)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type opayEvent struct {
	Payload struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"payload"`
}

// POST /api/webhooks/opay
func (h Handlers) OPayWebhook(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "could not read request body", nil)
		return
	}

	g, err := h.Payments.Gateways.Get(gateway.ProviderOPay)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !g.ValidateWebhookSignature(body, c.GetHeader("Authorization")) {
		utils.LogEvent(requestID, "webhook", "opay", "rejected: bad token")
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid webhook token", nil)
		return
	}

	var event opayEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Payload.Reference == "" {
		utils.LogEvent(requestID, "webhook", "opay", "unparsable body, acknowledged")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	h.reconcileFromWebhook(c, event.Payload.Reference, gateway.ProviderOPay, requestID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// reconcileFromWebhook never fails the HTTP response: webhook handlers
// acknowledge once the signature checks out, and reconciliation problems
// are logged for the provider's retry or the client verify path to pick
// up later.
func (h Handlers) reconcileFromWebhook(c *gin.Context, reference, provider, requestID string) {
	if reference == "" {
		utils.LogEvent(requestID, "webhook", provider, "event without reference, ignored")
		return
	}

	svc := h.Payments
	svc.RequestID = requestID

	if _, err := svc.VerifyAndReconcile(c.Request.Context(), reference, provider); err != nil {
		if domain.IsAlreadyProcessed(err) {
			utils.LogEvent(requestID, "webhook", provider, "replay for "+reference+", no-op")
			return
		}
		utils.LogEvent(requestID, "webhook", provider, "reconcile failed for "+reference+": "+err.Error())
	}
}

// GET /api/payments/booking/:id (admin)
func (h Handlers) ListBookingPayments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.Payments.ListByBooking(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}
