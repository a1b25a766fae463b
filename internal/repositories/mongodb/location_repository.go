package mongodb

import (
	"context"
	"fmt"
	"time"

	"rentfleet/internal/models"
	"rentfleet/internal/repositories/interfaces"
	"rentfleet/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type locationRepository struct {
	collection *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) interfaces.LocationRepository {
	return &locationRepository{
		collection: db.Collection("locations"),
	}
}

// Basic CRUD operations
func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	if location.ID.IsZero() {
		location.ID = primitive.NewObjectID()
	}
	location.CreatedAt = time.Now()
	location.UpdatedAt = time.Now()

	// At most one headquarters per company.
	if location.IsHeadquarters {
		if err := r.assertNoOtherHeadquarters(ctx, location.CompanyID, location.ID); err != nil {
			return err
		}
	}

	_, err := r.collection.InsertOne(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", TranslateError(err))
	}

	return nil
}

func (r *locationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	var location models.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return &location, nil
}

func (r *locationRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	if isHQ, exists := updates["is_headquarters"]; exists {
		if hq, ok := isHQ.(bool); ok && hq {
			location, err := r.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := r.assertNoOtherHeadquarters(ctx, location.CompanyID, id); err != nil {
				return err
			}
		}
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", TranslateError(err))
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByIDs fetches every referenced location in a single round trip.
func (r *locationRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Location, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*models.Location
	for cursor.Next(ctx) {
		var location models.Location
		if err := cursor.Decode(&location); err != nil {
			return nil, fmt.Errorf("failed to decode location: %w", err)
		}
		locations = append(locations, &location)
	}

	return locations, nil
}

// Tenant scoping
func (r *locationRepository) GetByCompanyID(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Location, int64, error) {
	filter := bson.M{"company_id": companyID}

	if params.Search != "" {
		searchFilter := params.GetSearchFilter([]string{"name", "address", "city"})
		if len(searchFilter) > 0 {
			filter = bson.M{"$and": []bson.M{filter, searchFilter}}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count locations: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*models.Location
	for cursor.Next(ctx) {
		var location models.Location
		if err := cursor.Decode(&location); err != nil {
			return nil, 0, fmt.Errorf("failed to decode location: %w", err)
		}
		locations = append(locations, &location)
	}

	return locations, total, nil
}

func (r *locationRepository) GetHeadquarters(ctx context.Context, companyID primitive.ObjectID) (*models.Location, error) {
	var location models.Location
	err := r.collection.FindOne(ctx, bson.M{
		"company_id":      companyID,
		"is_headquarters": true,
	}).Decode(&location)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get headquarters: %w", err)
	}

	return &location, nil
}

func (r *locationRepository) assertNoOtherHeadquarters(ctx context.Context, companyID, excludeID primitive.ObjectID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"company_id":      companyID,
		"is_headquarters": true,
		"_id":             bson.M{"$ne": excludeID},
	})
	if err != nil {
		return fmt.Errorf("failed to check headquarters: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("company already has a headquarters location: %w", ErrDuplicateKey)
	}
	return nil
}
