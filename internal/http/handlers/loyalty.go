package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/http/middleware"
)

// GET /api/loyalty/balance
func (h Handlers) LoyaltyBalance(c *gin.Context) {
	caller := middleware.GetCaller(c)
	balance, err := h.Loyalty.Balance(caller.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": caller.UserID, "balance": balance})
}

// GET /api/loyalty/history
func (h Handlers) LoyaltyHistory(c *gin.Context) {
	caller := middleware.GetCaller(c)
	history, err := h.Loyalty.History(caller.UserID, queryInt(c, "limit", 50))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history, "count": len(history)})
}

// POST /api/admin/loyalty/:userId/reconcile?repair=true
func (h Handlers) ReconcileLoyalty(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	svc := h.Loyalty
	svc.RequestID = middleware.GetRequestID(c)

	result, err := svc.ReconcileBalance(userID, c.Query("repair") == "true")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
