package routes

import (
	"rentfleet/internal/handlers"
	"rentfleet/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupLocationRoutes sets up routes for pickup/dropoff location management
func SetupLocationRoutes(r *gin.RouterGroup, locationHandler *handlers.LocationHandler, jwtSecret string) {
	locations := r.Group("/locations")
	locations.Use(middleware.AuthRequired(jwtSecret))
	{
		locations.POST("", locationHandler.CreateLocation)
		locations.GET("", locationHandler.ListLocations)
		locations.GET("/:id", locationHandler.GetLocation)
		locations.PUT("/:id", locationHandler.UpdateLocation)
		locations.DELETE("/:id", locationHandler.DeleteLocation)
	}
}
