package interfaces

import (
	"context"

	"rentfleet/internal/models"
	"rentfleet/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Tenant scoping
	GetByCompanyID(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)

	// Vehicle identification. Plate lookups are tenant-scoped because
	// uniqueness only holds within one company.
	GetByLicensePlate(ctx context.Context, companyID primitive.ObjectID, licensePlate string) (*models.Vehicle, error)

	// Status operations
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VehicleStatus) error

	// Analytics
	GetCountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}
