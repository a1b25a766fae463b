package interfaces

import (
	"context"

	"rentfleet/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleLocationRepository interface {
	// InsertMany inserts association rows in one call. An empty slice is a
	// no-op, not an error.
	InsertMany(ctx context.Context, associations []*models.VehicleLocation) error

	// DeleteByVehicleID removes every association row for the vehicle,
	// both roles, in one call.
	DeleteByVehicleID(ctx context.Context, vehicleID primitive.ObjectID) error

	// GetByVehicleID returns all association rows for the vehicle.
	GetByVehicleID(ctx context.Context, vehicleID primitive.ObjectID) ([]*models.VehicleLocation, error)

	// CountByLocationID reports how many vehicles reference a location.
	CountByLocationID(ctx context.Context, locationID primitive.ObjectID) (int64, error)
}
