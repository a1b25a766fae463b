package routes

import (
	"rentfleet/internal/handlers"
	"rentfleet/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupVehicleRoutes sets up routes for fleet vehicle management
func SetupVehicleRoutes(r *gin.RouterGroup, vehicleHandler *handlers.VehicleHandler, jwtSecret string) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.AuthRequired(jwtSecret))
	{
		vehicles.POST("", vehicleHandler.CreateVehicle)
		vehicles.GET("", vehicleHandler.ListVehicles)
		vehicles.GET("/:id", vehicleHandler.GetVehicle)
		vehicles.PUT("/:id", vehicleHandler.UpdateVehicle)
		vehicles.PATCH("/:id/status", vehicleHandler.UpdateVehicleStatus)
		vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
	}
}
