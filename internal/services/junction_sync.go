package services

import (
	"context"
	"fmt"

	"rentfleet/internal/core"
	"rentfleet/internal/models"
	"rentfleet/internal/repositories/interfaces"
	"rentfleet/internal/utils"
	"rentfleet/pkg/logger"
	"rentfleet/pkg/resilience"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JunctionSynchronizer replaces a vehicle's location associations with the
// desired per-role sets and verifies the post-write state. The read-back is
// the only defense against a concurrent writer: a mismatch after a
// successful write is a lost update and must be reported, not trusted.
type JunctionSynchronizer struct {
	associationRepo interfaces.VehicleLocationRepository
	logger          *logger.Logger
}

func NewJunctionSynchronizer(associationRepo interfaces.VehicleLocationRepository, log *logger.Logger) *JunctionSynchronizer {
	return &JunctionSynchronizer{
		associationRepo: associationRepo,
		logger:          log,
	}
}

// Sync deletes every existing association row for the vehicle, inserts the
// union of the desired pickup and dropoff sets (empty union is a no-op),
// then re-reads and compares per role. The ids must already be validated by
// the location resolver.
func (s *JunctionSynchronizer) Sync(ctx context.Context, vehicleID primitive.ObjectID, pickupIDs, dropoffIDs []primitive.ObjectID) error {
	err := resilience.Do(ctx, "associations.delete", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.associationRepo.DeleteByVehicleID(ctx, vehicleID)
		})
	if err != nil {
		return fmt.Errorf("failed to clear vehicle locations: %w", err)
	}

	rows := make([]*models.VehicleLocation, 0, len(pickupIDs)+len(dropoffIDs))
	for _, id := range pickupIDs {
		rows = append(rows, &models.VehicleLocation{
			VehicleID:  vehicleID,
			LocationID: id,
			Role:       models.LocationRolePickup,
		})
	}
	for _, id := range dropoffIDs {
		rows = append(rows, &models.VehicleLocation{
			VehicleID:  vehicleID,
			LocationID: id,
			Role:       models.LocationRoleDropoff,
		})
	}

	if len(rows) > 0 {
		err = resilience.Do(ctx, "associations.insert", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
			func(ctx context.Context) error {
				return s.associationRepo.InsertMany(ctx, rows)
			})
		if err != nil {
			return fmt.Errorf("failed to insert vehicle locations: %w", err)
		}
	}

	return s.verify(ctx, vehicleID, pickupIDs, dropoffIDs)
}

// verify re-reads the association rows and compares, as sets per role,
// against what was intended to persist.
func (s *JunctionSynchronizer) verify(ctx context.Context, vehicleID primitive.ObjectID, pickupIDs, dropoffIDs []primitive.ObjectID) error {
	persisted, err := resilience.DoValue(ctx, "associations.readback", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) ([]*models.VehicleLocation, error) {
			return s.associationRepo.GetByVehicleID(ctx, vehicleID)
		})
	if err != nil {
		return fmt.Errorf("failed to read back vehicle locations: %w", err)
	}

	gotPickup := make(map[primitive.ObjectID]struct{})
	gotDropoff := make(map[primitive.ObjectID]struct{})
	for _, row := range persisted {
		switch row.Role {
		case models.LocationRolePickup:
			gotPickup[row.LocationID] = struct{}{}
		case models.LocationRoleDropoff:
			gotDropoff[row.LocationID] = struct{}{}
		}
	}

	if !sameIDSet(gotPickup, pickupIDs) || !sameIDSet(gotDropoff, dropoffIDs) {
		s.logger.WithField("vehicle_id", vehicleID.Hex()).Error("Association read-back does not match intended state")
		return &core.InconsistencyError{
			Resource: "vehicle locations",
			Detail:   "persisted associations do not match the requested sets; a concurrent change likely interfered, retry the operation",
		}
	}

	return nil
}

func sameIDSet(got map[primitive.ObjectID]struct{}, want []primitive.ObjectID) bool {
	if len(got) != len(want) {
		return false
	}
	for _, id := range want {
		if _, ok := got[id]; !ok {
			return false
		}
	}
	return true
}
