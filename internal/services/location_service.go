package services

import (
	"context"
	"errors"

	"rentfleet/internal/core"
	"rentfleet/internal/models"
	"rentfleet/internal/repositories/interfaces"
	"rentfleet/internal/utils"
	"rentfleet/internal/validators"
	"rentfleet/pkg/logger"
	"rentfleet/pkg/resilience"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationService manages the tenant's pickup/dropoff points that vehicle
// associations reference.
type LocationService interface {
	Create(ctx context.Context, companyID primitive.ObjectID, req *validators.LocationCreateRequest) (*models.Location, error)
	Update(ctx context.Context, companyID, locationID primitive.ObjectID, req *validators.LocationUpdateRequest) (*models.Location, error)
	Delete(ctx context.Context, companyID, locationID primitive.ObjectID) error
	Get(ctx context.Context, companyID, locationID primitive.ObjectID) (*models.Location, error)
	List(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Location, int64, error)
}

type locationService struct {
	locationRepo    interfaces.LocationRepository
	associationRepo interfaces.VehicleLocationRepository
	logger          *logger.Logger
}

func NewLocationService(
	locationRepo interfaces.LocationRepository,
	associationRepo interfaces.VehicleLocationRepository,
	log *logger.Logger,
) LocationService {
	return &locationService{
		locationRepo:    locationRepo,
		associationRepo: associationRepo,
		logger:          log,
	}
}

func (s *locationService) Create(ctx context.Context, companyID primitive.ObjectID, req *validators.LocationCreateRequest) (*models.Location, error) {
	if companyID.IsZero() {
		return nil, &core.AuthorizationError{Reason: "no company identity on the request"}
	}

	if violations := validators.ValidateLocationCreate(req); len(violations) > 0 {
		return nil, &core.ValidationError{Violations: violations}
	}

	location := &models.Location{
		CompanyID:      companyID,
		Name:           validators.SanitizeInput(req.Name),
		Address:        validators.SanitizeInput(req.Address),
		City:           validators.SanitizeInput(req.City),
		Country:        validators.SanitizeInput(req.Country),
		IsPickup:       req.IsPickup,
		IsDropoff:      req.IsDropoff,
		IsHeadquarters: req.IsHeadquarters,
	}

	err := resilience.Do(ctx, "locations.insert", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.locationRepo.Create(ctx, location)
		})
	if err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, &core.ConflictError{Field: "is_headquarters", Value: "true"}
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"location_id": location.ID.Hex(),
		"company_id":  companyID.Hex(),
	}).Info("Location created")

	return location, nil
}

func (s *locationService) Update(ctx context.Context, companyID, locationID primitive.ObjectID, req *validators.LocationUpdateRequest) (*models.Location, error) {
	if _, err := s.authorize(ctx, companyID, locationID); err != nil {
		return nil, err
	}

	if violations := validators.ValidateLocationUpdate(req); len(violations) > 0 {
		return nil, &core.ValidationError{Violations: violations}
	}

	updates := map[string]interface{}{
		"name":            validators.SanitizeInput(req.Name),
		"address":         validators.SanitizeInput(req.Address),
		"city":            validators.SanitizeInput(req.City),
		"country":         validators.SanitizeInput(req.Country),
		"is_pickup":       req.IsPickup,
		"is_dropoff":      req.IsDropoff,
		"is_headquarters": req.IsHeadquarters,
	}

	err := resilience.Do(ctx, "locations.update", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.locationRepo.Update(ctx, locationID, updates)
		})
	if err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, &core.ConflictError{Field: "is_headquarters", Value: "true"}
		}
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, &core.NotFoundError{Resource: "location", ID: locationID.Hex()}
		}
		return nil, err
	}

	return s.locationRepo.GetByID(ctx, locationID)
}

func (s *locationService) Delete(ctx context.Context, companyID, locationID primitive.ObjectID) error {
	if _, err := s.authorize(ctx, companyID, locationID); err != nil {
		return err
	}

	// A location still referenced by vehicle associations cannot be removed;
	// the caller must detach it from every vehicle first.
	count, err := resilience.DoValue(ctx, "associations.count", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) (int64, error) {
			return s.associationRepo.CountByLocationID(ctx, locationID)
		})
	if err != nil {
		return err
	}
	if count > 0 {
		return &core.ConflictError{Field: "location_id", Value: locationID.Hex()}
	}

	err = resilience.Do(ctx, "locations.delete", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.locationRepo.Delete(ctx, locationID)
		})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return &core.NotFoundError{Resource: "location", ID: locationID.Hex()}
		}
		return err
	}

	s.logger.WithField("location_id", locationID.Hex()).Info("Location deleted")

	return nil
}

func (s *locationService) Get(ctx context.Context, companyID, locationID primitive.ObjectID) (*models.Location, error) {
	return s.authorize(ctx, companyID, locationID)
}

func (s *locationService) List(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Location, int64, error) {
	if companyID.IsZero() {
		return nil, 0, &core.AuthorizationError{Reason: "no company identity on the request"}
	}

	type locationPage struct {
		locations []*models.Location
		total     int64
	}

	page, err := resilience.DoValue(ctx, "locations.list", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) (locationPage, error) {
			locations, total, err := s.locationRepo.GetByCompanyID(ctx, companyID, params)
			return locationPage{locations: locations, total: total}, err
		})
	if err != nil {
		return nil, 0, err
	}

	return page.locations, page.total, nil
}

func (s *locationService) authorize(ctx context.Context, companyID, locationID primitive.ObjectID) (*models.Location, error) {
	if companyID.IsZero() {
		return nil, &core.AuthorizationError{Reason: "no company identity on the request"}
	}

	location, err := resilience.DoValue(ctx, "locations.get", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) (*models.Location, error) {
			return s.locationRepo.GetByID(ctx, locationID)
		})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, &core.NotFoundError{Resource: "location", ID: locationID.Hex()}
		}
		return nil, err
	}

	if location.CompanyID != companyID {
		return nil, &core.AuthorizationError{Reason: "location belongs to a different company"}
	}

	return location, nil
}
