package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/config"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/http/middleware"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/services"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

// Handlers bundles every route handler with its dependencies. Everything
// is passed in explicitly; there are no package-level singletons.
type Handlers struct {
	DB       *sql.DB
	Env      config.Env
	Trips    services.TripService
	Bookings services.BookingService
	Payments services.PaymentService
	Tickets  services.TicketService
	Loyalty  services.LoyaltyService
	Docs     services.DocsService
}

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to the HTTP taxonomy. Business
// rule violations come back as 400s with machine-readable codes; only
// genuinely unexpected failures surface as 500s.
func RespondDomainError(c *gin.Context, err error) {
	var seatConflict domain.SeatConflictError
	switch {
	case errors.As(err, &seatConflict):
		respondError(c, http.StatusBadRequest, "seat_conflict", seatConflict.Error(),
			gin.H{"conflictingSeats": seatConflict.Seats})
	case domain.IsInsufficientCapacity(err):
		respondError(c, http.StatusBadRequest, "insufficient_capacity", err.Error(), nil)
	case domain.IsInsufficientPoints(err):
		respondError(c, http.StatusBadRequest, "insufficient_points", err.Error(), nil)
	case domain.IsNotBookable(err):
		respondError(c, http.StatusBadRequest, "not_bookable", err.Error(), nil)
	case domain.IsAlreadyProcessed(err):
		respondError(c, http.StatusBadRequest, "already_processed", err.Error(), nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	default:
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid request payload", gin.H{"detail": err.Error()})
		return false
	}
	return true
}
