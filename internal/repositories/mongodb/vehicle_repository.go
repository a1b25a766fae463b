package mongodb

import (
	"context"
	"fmt"
	"time"

	"rentfleet/internal/models"
	"rentfleet/internal/repositories/interfaces"
	"rentfleet/internal/utils"
	"rentfleet/internal/validators"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type vehicleRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewVehicleRepository(db *mongo.Database, cache CacheService) interfaces.VehicleRepository {
	return &vehicleRepository{
		collection: db.Collection("vehicles"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	vehicle.LicensePlate = validators.NormalizePlate(vehicle.LicensePlate)

	_, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", TranslateError(err))
	}

	r.cacheVehicle(ctx, vehicle)

	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	// Try cache first
	if vehicle := r.getVehicleFromCache(ctx, id.Hex()); vehicle != nil {
		return vehicle, nil
	}

	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	r.cacheVehicle(ctx, &vehicle)

	return &vehicle, nil
}

func (r *vehicleRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	// Normalize license plate if being updated
	if licensePlate, exists := updates["license_plate"]; exists {
		if plateStr, ok := licensePlate.(string); ok {
			updates["license_plate"] = validators.NormalizePlate(plateStr)
		}
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", TranslateError(err))
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	r.invalidateVehicleCache(ctx, id.Hex())

	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	r.invalidateVehicleCache(ctx, id.Hex())

	return nil
}

// Tenant scoping
func (r *vehicleRepository) GetByCompanyID(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	filter := bson.M{"company_id": companyID}
	return r.findVehiclesWithFilter(ctx, filter, params)
}

// Vehicle identification
func (r *vehicleRepository) GetByLicensePlate(ctx context.Context, companyID primitive.ObjectID, licensePlate string) (*models.Vehicle, error) {
	licensePlate = validators.NormalizePlate(licensePlate)

	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{
		"company_id":    companyID,
		"license_plate": licensePlate,
	}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle by license plate: %w", err)
	}

	return &vehicle, nil
}

// Status operations
func (r *vehicleRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VehicleStatus) error {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

// Analytics
func (r *vehicleRepository) GetCountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"company_id": companyID})
}

// Helper methods
func (r *vehicleRepository) findVehiclesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	if params.Search != "" {
		searchFields := []string{"make", "model", "color", "license_plate"}
		searchFilter := params.GetSearchFilter(searchFields)
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*models.Vehicle
	for cursor.Next(ctx) {
		var vehicle models.Vehicle
		if err := cursor.Decode(&vehicle); err != nil {
			return nil, 0, fmt.Errorf("failed to decode vehicle: %w", err)
		}
		vehicles = append(vehicles, &vehicle)
	}

	return vehicles, total, nil
}

// Cache operations
func (r *vehicleRepository) cacheVehicle(ctx context.Context, vehicle *models.Vehicle) {
	if r.cache != nil && vehicle.Status == models.VehicleStatusActive {
		cacheKey := fmt.Sprintf("vehicle:%s", vehicle.ID.Hex())
		r.cache.Set(ctx, cacheKey, vehicle, 15*time.Minute)
	}
}

func (r *vehicleRepository) getVehicleFromCache(ctx context.Context, vehicleID string) *models.Vehicle {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("vehicle:%s", vehicleID)
	var vehicle models.Vehicle
	if err := r.cache.Get(ctx, cacheKey, &vehicle); err != nil {
		return nil
	}

	return &vehicle
}

func (r *vehicleRepository) invalidateVehicleCache(ctx context.Context, vehicleID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("vehicle:%s", vehicleID)
		r.cache.Delete(ctx, cacheKey)
	}
}
