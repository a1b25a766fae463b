package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LocationRole string

const (
	LocationRolePickup  LocationRole = "pickup"
	LocationRoleDropoff LocationRole = "dropoff"
)

// VehicleLocation is one vehicle-location association row. The full set for
// a vehicle and role has set semantics: the (vehicle, location, role) triple
// is unique and order carries no meaning.
type VehicleLocation struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID  primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id" validate:"required"`
	LocationID primitive.ObjectID `json:"location_id" bson:"location_id" validate:"required"`
	Role       LocationRole       `json:"role" bson:"role" validate:"required"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

func (r LocationRole) Valid() bool {
	return r == LocationRolePickup || r == LocationRoleDropoff
}
