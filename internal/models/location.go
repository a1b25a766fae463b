package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a tenant-owned pickup/dropoff point. At most one location per
// company may carry the headquarters flag.
type Location struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID      primitive.ObjectID `json:"company_id" bson:"company_id" validate:"required"`
	Name           string             `json:"name" bson:"name" validate:"required"`
	Address        string             `json:"address" bson:"address"`
	City           string             `json:"city" bson:"city"`
	Country        string             `json:"country" bson:"country"`
	IsPickup       bool               `json:"is_pickup" bson:"is_pickup"`
	IsDropoff      bool               `json:"is_dropoff" bson:"is_dropoff"`
	IsHeadquarters bool               `json:"is_headquarters" bson:"is_headquarters"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// SupportsRole reports whether the location has the flag for the given
// association role set.
func (l *Location) SupportsRole(role LocationRole) bool {
	switch role {
	case LocationRolePickup:
		return l.IsPickup
	case LocationRoleDropoff:
		return l.IsDropoff
	}
	return false
}
