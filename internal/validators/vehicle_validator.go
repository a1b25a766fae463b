package validators

import (
	"fmt"
	"math"
	"strings"
	"time"

	"rentfleet/internal/core"
)

// ImageEntry is one entry of the caller's desired image list. Exactly one of
// URL (an existing stored reference to keep) or Data (an inline base64 or
// data-URI payload to upload) is expected.
type ImageEntry struct {
	URL         string `json:"url,omitempty"`
	Data        string `json:"data,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	FileName    string `json:"file_name,omitempty"`
}

// IsUpload reports whether the entry carries an inline payload.
func (e *ImageEntry) IsUpload() bool {
	return e.Data != ""
}

type VehicleCreateRequest struct {
	Make               string       `json:"make" validate:"required,min=1,max=50"`
	Model              string       `json:"model" validate:"required,min=1,max=50"`
	Year               int          `json:"year" validate:"required"`
	LicensePlate       string       `json:"license_plate" validate:"required,license_plate"`
	Color              string       `json:"color" validate:"omitempty,max=30"`
	Transmission       string       `json:"transmission" validate:"required,transmission"`
	FuelType           string       `json:"fuel_type" validate:"required,fuel_type"`
	Seats              int          `json:"seats" validate:"required"`
	DailyRate          float64      `json:"daily_rate" validate:"required"`
	Deposit            *float64     `json:"deposit,omitempty"`
	Status             string       `json:"status" validate:"omitempty,vehicle_status"`
	Features           []string     `json:"features" validate:"omitempty,max=20"`
	Images             []ImageEntry `json:"images"`
	PickupLocationIDs  []string     `json:"pickup_location_ids"`
	DropoffLocationIDs []string     `json:"dropoff_location_ids"`
}

type VehicleUpdateRequest struct {
	Make               string       `json:"make" validate:"required,min=1,max=50"`
	Model              string       `json:"model" validate:"required,min=1,max=50"`
	Year               int          `json:"year" validate:"required"`
	LicensePlate       string       `json:"license_plate" validate:"required,license_plate"`
	Color              string       `json:"color" validate:"omitempty,max=30"`
	Transmission       string       `json:"transmission" validate:"required,transmission"`
	FuelType           string       `json:"fuel_type" validate:"required,fuel_type"`
	Seats              int          `json:"seats" validate:"required"`
	DailyRate          float64      `json:"daily_rate" validate:"required"`
	Deposit            *float64     `json:"deposit,omitempty"`
	Status             string       `json:"status" validate:"omitempty,vehicle_status"`
	Features           []string     `json:"features" validate:"omitempty,max=20"`
	Images             []ImageEntry `json:"images"`
	// RemoveImages marks an explicit request to end up with no images,
	// which otherwise fails the operation.
	RemoveImages       bool     `json:"remove_images"`
	PickupLocationIDs  []string `json:"pickup_location_ids"`
	DropoffLocationIDs []string `json:"dropoff_location_ids"`
}

const (
	MinVehicleYear   = 1990
	MinSeats         = 1
	MaxSeats         = 20
	MaxVehicleImages = 12
)

// NormalizePlate trims and uppercases a license plate. Applied before any
// uniqueness logic so "ab-123-cd" and "AB-123-CD" collide.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// ValidateVehicleCreate checks a create payload. Pure: no network access,
// no side effects. All violations are accumulated into one list.
func ValidateVehicleCreate(req *VehicleCreateRequest) []core.FieldViolation {
	violations := ValidateStruct(req)
	violations = append(violations, validateVehicleFields(req.Year, req.Seats, req.DailyRate, req.Deposit)...)
	violations = append(violations, validateImageCount(len(req.Images))...)
	return violations
}

// ValidateVehicleUpdate checks an update payload with the same rules.
func ValidateVehicleUpdate(req *VehicleUpdateRequest) []core.FieldViolation {
	violations := ValidateStruct(req)
	violations = append(violations, validateVehicleFields(req.Year, req.Seats, req.DailyRate, req.Deposit)...)
	violations = append(violations, validateImageCount(len(req.Images))...)
	return violations
}

func validateImageCount(count int) []core.FieldViolation {
	if count > MaxVehicleImages {
		return []core.FieldViolation{{
			Field:   "images",
			Message: fmt.Sprintf("At most %d images per vehicle", MaxVehicleImages),
		}}
	}
	return nil
}

func validateVehicleFields(year, seats int, dailyRate float64, deposit *float64) []core.FieldViolation {
	var violations []core.FieldViolation

	currentYear := time.Now().Year()
	if year != 0 && (year < MinVehicleYear || year > currentYear+1) {
		violations = append(violations, core.FieldViolation{
			Field:   "year",
			Message: fmt.Sprintf("Year must be between %d and %d", MinVehicleYear, currentYear+1),
		})
	}

	if seats != 0 && (seats < MinSeats || seats > MaxSeats) {
		violations = append(violations, core.FieldViolation{
			Field:   "seats",
			Message: fmt.Sprintf("Seat count must be between %d and %d", MinSeats, MaxSeats),
		})
	}

	if dailyRate != 0 {
		if dailyRate < 0 {
			violations = append(violations, core.FieldViolation{
				Field:   "daily_rate",
				Message: "Daily rate must be greater than zero",
			})
		} else if !isTwoDecimalAmount(dailyRate) {
			violations = append(violations, core.FieldViolation{
				Field:   "daily_rate",
				Message: "Daily rate must have at most two decimal places",
			})
		}
	}

	if deposit != nil {
		if *deposit < 0 {
			violations = append(violations, core.FieldViolation{
				Field:   "deposit",
				Message: "Deposit cannot be negative",
			})
		} else if !isTwoDecimalAmount(*deposit) {
			violations = append(violations, core.FieldViolation{
				Field:   "deposit",
				Message: "Deposit must have at most two decimal places",
			})
		}
	}

	return violations
}

func isTwoDecimalAmount(amount float64) bool {
	cents := amount * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}
