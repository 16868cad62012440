package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/http/middleware"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/services"
)

type createBookingRequest struct {
	TripID             int64    `json:"tripId" binding:"required"`
	PassengerName      string   `json:"passengerName" binding:"required"`
	PassengerPhone     string   `json:"passengerPhone"`
	PassengerEmail     string   `json:"passengerEmail"`
	SeatNumbers        []string `json:"seatNumbers" binding:"required,min=1"`
	LoyaltyPointsToUse int64    `json:"loyaltyPointsToUse"`
}

type bookingResponse struct {
	Booking         models.Booking `json:"booking"`
	PaymentRequired bool           `json:"paymentRequired"`
}

// POST /api/bookings
func (h Handlers) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := h.Bookings
	svc.RequestID = middleware.GetRequestID(c)

	booking, err := svc.CreateBooking(services.CreateBookingInput{
		TripID:             req.TripID,
		PassengerName:      req.PassengerName,
		PassengerPhone:     req.PassengerPhone,
		PassengerEmail:     req.PassengerEmail,
		SeatNumbers:        req.SeatNumbers,
		LoyaltyPointsToUse: req.LoyaltyPointsToUse,
		Caller:             middleware.GetCaller(c),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookingResponse{
		Booking:         booking,
		PaymentRequired: booking.PaymentRequired(),
	})
}

// GET /api/bookings/:reference
func (h Handlers) GetBooking(c *gin.Context) {
	booking, err := h.Bookings.GetByReference(c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookingResponse{
		Booking:         booking,
		PaymentRequired: booking.PaymentRequired(),
	})
}

// GET /api/bookings (authenticated: own bookings)
func (h Handlers) MyBookings(c *gin.Context) {
	caller := middleware.GetCaller(c)
	bookings, err := h.Bookings.List(caller.UserID, c.Query("status"), queryInt(c, "limit", 50))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GET /api/admin/bookings
func (h Handlers) ListBookings(c *gin.Context) {
	var userID int64
	if raw := c.Query("userId"); raw != "" {
		userID, _ = strconv.ParseInt(raw, 10, 64)
	}
	bookings, err := h.Bookings.List(userID, c.Query("status"), queryInt(c, "limit", 100))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// POST /api/admin/bookings/:id/cancel
func (h Handlers) CancelBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "cancelled by admin"
	}

	svc := h.Payments
	svc.RequestID = middleware.GetRequestID(c)

	booking, err := svc.CancelBooking(id, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "message": "booking cancelled, seats released"})
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
