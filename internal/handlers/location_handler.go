package handlers

import (
	"rentfleet/internal/middleware"
	"rentfleet/internal/services"
	"rentfleet/internal/utils"
	"rentfleet/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LocationHandler struct {
	locationService services.LocationService
}

func NewLocationHandler(locationService services.LocationService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
	}
}

// CreateLocation creates a pickup/dropoff point for the company
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var request validators.LocationCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	location, err := h.locationService.Create(c.Request.Context(), companyID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Location created successfully", location)
}

// UpdateLocation updates a location's fields and role flags
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	locationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid location ID")
		return
	}

	var request validators.LocationUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	location, err := h.locationService.Update(c.Request.Context(), companyID, locationID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", location)
}

// DeleteLocation removes a location that no vehicle references
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	locationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid location ID")
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.locationService.Delete(c.Request.Context(), companyID, locationID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location deleted successfully", nil)
}

// GetLocation retrieves one location
func (h *LocationHandler) GetLocation(c *gin.Context) {
	locationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid location ID")
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	location, err := h.locationService.Get(c.Request.Context(), companyID, locationID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location retrieved successfully", location)
}

// ListLocations retrieves the company's locations with pagination
func (h *LocationHandler) ListLocations(c *gin.Context) {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	locations, total, err := h.locationService.List(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(locations),
	}
	utils.SuccessResponseWithMeta(c, "Locations retrieved successfully", locations, meta)
}
