package mongodb

import (
	"context"
	"fmt"
	"time"

	"rentfleet/internal/models"
	"rentfleet/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type vehicleLocationRepository struct {
	collection *mongo.Collection
}

func NewVehicleLocationRepository(db *mongo.Database) interfaces.VehicleLocationRepository {
	return &vehicleLocationRepository{
		collection: db.Collection("vehicle_locations"),
	}
}

func (r *vehicleLocationRepository) InsertMany(ctx context.Context, associations []*models.VehicleLocation) error {
	if len(associations) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(associations))
	now := time.Now()
	for _, assoc := range associations {
		if assoc.ID.IsZero() {
			assoc.ID = primitive.NewObjectID()
		}
		assoc.CreatedAt = now
		docs = append(docs, assoc)
	}

	_, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle locations: %w", TranslateError(err))
	}

	return nil
}

func (r *vehicleLocationRepository) DeleteByVehicleID(ctx context.Context, vehicleID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return fmt.Errorf("failed to delete vehicle locations: %w", err)
	}

	return nil
}

func (r *vehicleLocationRepository) GetByVehicleID(ctx context.Context, vehicleID primitive.ObjectID) ([]*models.VehicleLocation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle locations: %w", err)
	}
	defer cursor.Close(ctx)

	var associations []*models.VehicleLocation
	for cursor.Next(ctx) {
		var assoc models.VehicleLocation
		if err := cursor.Decode(&assoc); err != nil {
			return nil, fmt.Errorf("failed to decode vehicle location: %w", err)
		}
		associations = append(associations, &assoc)
	}

	return associations, nil
}

func (r *vehicleLocationRepository) CountByLocationID(ctx context.Context, locationID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"location_id": locationID})
}
