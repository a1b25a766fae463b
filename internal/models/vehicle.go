package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRetired     VehicleStatus = "retired"
)

type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
)

type FuelType string

const (
	FuelTypePetrol   FuelType = "petrol"
	FuelTypeDiesel   FuelType = "diesel"
	FuelTypeElectric FuelType = "electric"
	FuelTypeHybrid   FuelType = "hybrid"
)

// Vehicle is a tenant-owned fleet resource. Images is an ordered list of
// blob URLs, first entry is the primary image. License plates are stored
// uppercase and are unique within a company.
type Vehicle struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID    primitive.ObjectID `json:"company_id" bson:"company_id" validate:"required"`
	Make         string             `json:"make" bson:"make" validate:"required"`
	Model        string             `json:"model" bson:"model" validate:"required"`
	Year         int                `json:"year" bson:"year" validate:"required"`
	LicensePlate string             `json:"license_plate" bson:"license_plate" validate:"required"`
	Color        string             `json:"color" bson:"color"`
	Transmission Transmission       `json:"transmission" bson:"transmission" validate:"required"`
	FuelType     FuelType           `json:"fuel_type" bson:"fuel_type" validate:"required"`
	Seats        int                `json:"seats" bson:"seats" validate:"required"`
	DailyRate    float64            `json:"daily_rate" bson:"daily_rate" validate:"required"`
	Deposit      *float64           `json:"deposit,omitempty" bson:"deposit,omitempty"`
	Status       VehicleStatus      `json:"status" bson:"status" default:"active"`
	Features     []string           `json:"features" bson:"features"`
	Images       []string           `json:"images" bson:"images"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusRetired:
		return true
	}
	return false
}

func (t Transmission) Valid() bool {
	return t == TransmissionAutomatic || t == TransmissionManual
}

func (f FuelType) Valid() bool {
	switch f {
	case FuelTypePetrol, FuelTypeDiesel, FuelTypeElectric, FuelTypeHybrid:
		return true
	}
	return false
}

// PrimaryImage returns the first image URL or an empty string.
func (v *Vehicle) PrimaryImage() string {
	if len(v.Images) > 0 {
		return v.Images[0]
	}
	return ""
}
