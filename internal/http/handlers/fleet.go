package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/repositories"
)

// GET /api/routes (public)
func (h Handlers) ListRoutes(c *gin.Context) {
	routes, err := repositories.FleetRepository{Q: h.DB}.ListRoutes(c.Query("all") != "true")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "count": len(routes)})
}

type createRouteRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	DistanceKM  int    `json:"distanceKm"`
	DurationMin int    `json:"durationMin"`
}

// POST /api/admin/routes
func (h Handlers) CreateRoute(c *gin.Context) {
	var req createRouteRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	fleet := repositories.FleetRepository{Q: h.DB}
	id, err := fleet.CreateRoute(models.Route{
		Origin:      req.Origin,
		Destination: req.Destination,
		DistanceKM:  req.DistanceKM,
		DurationMin: req.DurationMin,
		Active:      true,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	route, err := fleet.GetRoute(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

// GET /api/admin/vehicles
func (h Handlers) ListVehicles(c *gin.Context) {
	vehicles, err := repositories.FleetRepository{Q: h.DB}.ListVehicles(c.Query("all") != "true")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "count": len(vehicles)})
}

type createVehicleRequest struct {
	Code        string `json:"code" binding:"required"`
	Model       string `json:"model" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,min=1,max=120"`
	SeatsPerRow int    `json:"seatsPerRow" binding:"required,min=1,max=10"`
}

// POST /api/admin/vehicles
func (h Handlers) CreateVehicle(c *gin.Context) {
	var req createVehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	fleet := repositories.FleetRepository{Q: h.DB}
	id, err := fleet.CreateVehicle(models.Vehicle{
		Code:        req.Code,
		Model:       req.Model,
		Capacity:    req.Capacity,
		SeatsPerRow: req.SeatsPerRow,
		Active:      true,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	vehicle, err := fleet.GetVehicle(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// PATCH /api/admin/vehicles/:id/active
func (h Handlers) SetVehicleActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := (repositories.FleetRepository{Q: h.DB}).SetVehicleActive(id, *req.Active); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle updated"})
}

// GET /api/admin/drivers
func (h Handlers) ListDrivers(c *gin.Context) {
	drivers, err := repositories.FleetRepository{Q: h.DB}.ListDrivers(c.Query("all") != "true")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "count": len(drivers)})
}

type createDriverRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	LicenseNo string `json:"licenseNo" binding:"required"`
}

// POST /api/admin/drivers
func (h Handlers) CreateDriver(c *gin.Context) {
	var req createDriverRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	fleet := repositories.FleetRepository{Q: h.DB}
	id, err := fleet.CreateDriver(models.Driver{
		Name:      req.Name,
		Phone:     req.Phone,
		LicenseNo: req.LicenseNo,
		Active:    true,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// PATCH /api/admin/drivers/:id/active
func (h Handlers) SetDriverActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := (repositories.FleetRepository{Q: h.DB}).SetDriverActive(id, *req.Active); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver updated"})
}
