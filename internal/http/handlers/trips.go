package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: name, Msg: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// GET /api/trips?origin=&destination=&date=
func (h Handlers) SearchTrips(c *gin.Context) {
	trips, err := h.Trips.Search(
		c.Query("origin"),
		c.Query("destination"),
		c.Query("date"),
	)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips, "count": len(trips)})
}

// GET /api/trips/:id
func (h Handlers) GetTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	trip, err := h.Trips.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GET /api/trips/:id/seats
func (h Handlers) GetTripSeatMap(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.Trips.SeatMap(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type createTripRequest struct {
	RouteID     int64  `json:"routeId" binding:"required"`
	VehicleID   int64  `json:"vehicleId" binding:"required"`
	DriverID    int64  `json:"driverId" binding:"required"`
	DepartureAt string `json:"departureAt" binding:"required"`
	ArrivalAt   string `json:"arrivalAt" binding:"required"`
	BasePrice   int64  `json:"basePrice" binding:"required"`
}

// POST /api/admin/trips
func (h Handlers) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	departure, err := utils.ParseDateTime(req.DepartureAt)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "departureAt", Msg: "expected YYYY-MM-DD HH:MM:SS"})
		return
	}
	arrival, err := utils.ParseDateTime(req.ArrivalAt)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "arrivalAt", Msg: "expected YYYY-MM-DD HH:MM:SS"})
		return
	}

	trip, err := h.Trips.CreateTrip(req.RouteID, req.VehicleID, req.DriverID, departure, arrival, req.BasePrice)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

type updateTripRequest struct {
	DepartureAt string `json:"departureAt" binding:"required"`
	ArrivalAt   string `json:"arrivalAt" binding:"required"`
	BasePrice   int64  `json:"basePrice" binding:"required"`
	Active      *bool  `json:"active" binding:"required"`
}

// PUT /api/admin/trips/:id
func (h Handlers) UpdateTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	departure, err := utils.ParseDateTime(req.DepartureAt)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "departureAt", Msg: "expected YYYY-MM-DD HH:MM:SS"})
		return
	}
	arrival, err := utils.ParseDateTime(req.ArrivalAt)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "arrivalAt", Msg: "expected YYYY-MM-DD HH:MM:SS"})
		return
	}

	trip, err := h.Trips.UpdateTrip(id, departure, arrival, req.BasePrice, *req.Active)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// DELETE /api/admin/trips/:id (soft-deactivate)
func (h Handlers) DeactivateTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Trips.DeactivateTrip(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip deactivated"})
}
