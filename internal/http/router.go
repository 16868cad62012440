package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/config"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/http/handlers"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/http/middleware"
)

// NewRouter wires every route group. Webhooks stay unauthenticated (they
// authenticate by signature), gate scanning needs staff, and everything
// under /api/admin needs the admin role.
func NewRouter(env config.Env, h handlers.Handlers) *gin.Engine {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(env.CORSAllowedOrigins))

	api := r.Group("/api")

	api.GET("/health", h.Health)
	api.GET("/db-check", h.DBCheck)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// Public catalogue.
	api.GET("/routes", h.ListRoutes)
	api.GET("/trips", h.SearchTrips)
	api.GET("/trips/:id", h.GetTrip)
	api.GET("/trips/:id/seats", h.GetTripSeatMap)

	// Booking creation works for guests too; a token, when present, ties
	// the booking to the account and unlocks point redemption.
	bookings := api.Group("/bookings", middleware.Auth(env.JWTSecret, false))
	{
		bookings.POST("", middleware.RateLimit(5, 10), h.CreateBooking)
		bookings.GET("/:reference", h.GetBooking)
	}
	api.GET("/my/bookings", middleware.Auth(env.JWTSecret, true), h.MyBookings)

	payments := api.Group("/payments")
	{
		payments.POST("/initialize", middleware.RateLimit(5, 10), h.InitializePayment)
		payments.GET("/verify/:reference", h.VerifyPayment)
	}

	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/paystack", h.PaystackWebhook)
		webhooks.POST("/opay", h.OPayWebhook)
	}

	tickets := api.Group("/tickets")
	{
		tickets.POST("/verify",
			middleware.Auth(env.JWTSecret, true),
			middleware.RequireRoles(models.RoleStaff, models.RoleAdmin),
			h.VerifyTicket)
		tickets.GET("/:reference/qr", h.TicketQRImage)
		tickets.GET("/:reference/pdf", h.TicketPDF)
	}

	loyalty := api.Group("/loyalty", middleware.Auth(env.JWTSecret, true))
	{
		loyalty.GET("/balance", h.LoyaltyBalance)
		loyalty.GET("/history", h.LoyaltyHistory)
	}

	admin := api.Group("/admin",
		middleware.Auth(env.JWTSecret, true),
		middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/trips", h.CreateTrip)
		admin.PUT("/trips/:id", h.UpdateTrip)
		admin.DELETE("/trips/:id", h.DeactivateTrip)

		admin.GET("/bookings", h.ListBookings)
		admin.POST("/bookings/:id/cancel", h.CancelBooking)
		admin.GET("/bookings/:id/payments", h.ListBookingPayments)

		admin.POST("/routes", h.CreateRoute)
		admin.GET("/vehicles", h.ListVehicles)
		admin.POST("/vehicles", h.CreateVehicle)
		admin.PATCH("/vehicles/:id/active", h.SetVehicleActive)
		admin.GET("/drivers", h.ListDrivers)
		admin.POST("/drivers", h.CreateDriver)
		admin.PATCH("/drivers/:id/active", h.SetDriverActive)

		admin.POST("/loyalty/:userId/reconcile", h.ReconcileLoyalty)
	}

	return r
}
