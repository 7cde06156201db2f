package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"roomdesk-backend/controllers"
	"roomdesk-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the controllers into the public and admin route
// groups. Everything under the admin group is rejected before data access
// when the bearer token is missing or invalid.
func SetupRouter(
	ac *controllers.AuthController,
	bc *controllers.BookingController,
	avc *controllers.AvailabilityController,
	rtc *controllers.RoomTypeController,
	rpc *controllers.ReportController,
	jwtSecret string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", ac.Login)

		// Public booking surface.
		api.POST("/bookings", bc.CreateBooking)
		api.POST("/check-availability", avc.CheckAvailability)
		api.GET("/room-types", rtc.GetRoomTypes)
		api.GET("/room-types/:id", rtc.GetRoomType)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin(jwtSecret))
		{
			admin.GET("/bookings", bc.GetBookings)
			admin.GET("/bookings/:id", bc.GetBookingDetails)
			admin.PUT("/bookings/:id", bc.UpdateBooking)
			admin.PATCH("/bookings/:id/status", bc.UpdateBookingStatus)
			admin.PATCH("/bookings/:id/unit", bc.AssignUnit)
			admin.GET("/bookings/metrics", rpc.BookingMetrics)

			admin.GET("/available-rooms", avc.AvailableRooms)
			admin.GET("/rooms/availability", rpc.RoomsAvailability)

			admin.POST("/room-types", rtc.CreateRoomType)
			admin.PUT("/room-types/:id", rtc.UpdateRoomType)
			admin.DELETE("/room-types/:id", rtc.DeleteRoomType)
		}
	}

	return r
}
