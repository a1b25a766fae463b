package validators

import (
	"rentfleet/internal/core"
)

type LocationCreateRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Address        string `json:"address" validate:"max=255"`
	City           string `json:"city" validate:"max=100"`
	Country        string `json:"country" validate:"max=100"`
	IsPickup       bool   `json:"is_pickup"`
	IsDropoff      bool   `json:"is_dropoff"`
	IsHeadquarters bool   `json:"is_headquarters"`
}

type LocationUpdateRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Address        string `json:"address" validate:"max=255"`
	City           string `json:"city" validate:"max=100"`
	Country        string `json:"country" validate:"max=100"`
	IsPickup       bool   `json:"is_pickup"`
	IsDropoff      bool   `json:"is_dropoff"`
	IsHeadquarters bool   `json:"is_headquarters"`
}

func ValidateLocationCreate(req *LocationCreateRequest) []core.FieldViolation {
	violations := ValidateStruct(req)
	return append(violations, validateLocationFlags(req.IsPickup, req.IsDropoff)...)
}

func ValidateLocationUpdate(req *LocationUpdateRequest) []core.FieldViolation {
	violations := ValidateStruct(req)
	return append(violations, validateLocationFlags(req.IsPickup, req.IsDropoff)...)
}

// A location no vehicle can be picked up from or returned to serves no
// purpose, so at least one role flag must be set.
func validateLocationFlags(isPickup, isDropoff bool) []core.FieldViolation {
	if !isPickup && !isDropoff {
		return []core.FieldViolation{{
			Field:   "is_pickup",
			Message: "Location must support pickup, dropoff or both",
		}}
	}
	return nil
}
