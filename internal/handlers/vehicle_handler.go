package handlers

import (
	"rentfleet/internal/middleware"
	"rentfleet/internal/models"
	"rentfleet/internal/services"
	"rentfleet/internal/utils"
	"rentfleet/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleHandler struct {
	vehicleService services.VehicleService
}

func NewVehicleHandler(vehicleService services.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
	}
}

// CreateVehicle creates a vehicle with its location associations and images
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var request validators.VehicleCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	resource, err := h.vehicleService.Create(c.Request.Context(), companyID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Vehicle created successfully", resource)
}

// UpdateVehicle replaces a vehicle's fields, associations and images
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	var request validators.VehicleUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	resource, err := h.vehicleService.Update(c.Request.Context(), companyID, vehicleID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle updated successfully", resource)
}

// DeleteVehicle removes a vehicle, its associations and its images
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.vehicleService.Delete(c.Request.Context(), companyID, vehicleID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle deleted successfully", nil)
}

// GetVehicle retrieves one vehicle with its association sets
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	resource, err := h.vehicleService.Get(c.Request.Context(), companyID, vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle retrieved successfully", resource)
}

// ListVehicles retrieves the company's fleet with pagination
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	resources, total, err := h.vehicleService.List(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(resources),
	}
	utils.SuccessResponseWithMeta(c, "Vehicles retrieved successfully", resources, meta)
}

// UpdateVehicleStatus changes the vehicle lifecycle status
func (h *VehicleHandler) UpdateVehicleStatus(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	var request struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	err = h.vehicleService.UpdateStatus(c.Request.Context(), companyID, vehicleID, models.VehicleStatus(request.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle status updated successfully", nil)
}
