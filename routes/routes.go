package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartspace/smartspace-be/controllers"
	"github.com/smartspace/smartspace-be/middleware"
	"github.com/smartspace/smartspace-be/websocket"
)

// Deps carries everything the router needs wired in from main.
type Deps struct {
	Auth      *controllers.AuthController
	Booking   *controllers.BookingController
	Admin     *controllers.AdminController
	Space     *controllers.SpaceController
	Hub       *websocket.Hub
	Logger    *zap.Logger
	JWTSecret string
}

func SetupRoutes(d Deps) *gin.Engine {
	r := gin.Default()

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/register", d.Auth.Register)
		public.POST("/auth/verify-email", d.Auth.VerifyEmail)
		public.POST("/auth/login", d.Auth.Login)
		public.GET("/spaces", d.Space.ListSpaces)
		public.GET("/spaces/:id", d.Space.GetSpace)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(d.JWTSecret))
	{
		protected.POST("/bookings", d.Booking.CreateBooking)
		protected.GET("/bookings/upcoming", d.Booking.GetUpcomingBookings)
		protected.GET("/bookings/mine", d.Booking.GetMyBookings)
		protected.DELETE("/bookings/:id", d.Booking.CancelBooking)
		protected.GET("/ws", websocket.HandleWebSocket(d.Hub, d.Logger))
	}

	// Admin only routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret))
	admin.Use(middleware.AdminOnly())
	{
		// Space management
		admin.POST("/spaces", d.Admin.CreateSpace)
		admin.PUT("/spaces/:id/status", d.Admin.UpdateSpaceStatus)

		// Booking management
		admin.GET("/bookings/pending", d.Admin.GetPendingBookings)
		admin.POST("/bookings/:id/approve", d.Admin.ApproveBooking)
		admin.POST("/bookings/:id/reject", d.Admin.RejectBooking)
		admin.POST("/bookings/check-status", d.Admin.CheckBookingStatus)
	}

	return r
}
