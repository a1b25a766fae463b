package interfaces

import (
	"context"

	"rentfleet/internal/models"
	"rentfleet/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LocationRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Bulk resolution: one round trip for a whole reference list.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Location, error)

	// Tenant scoping
	GetByCompanyID(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Location, int64, error)
	GetHeadquarters(ctx context.Context, companyID primitive.ObjectID) (*models.Location, error)
}
