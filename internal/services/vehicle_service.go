package services

import (
	"context"
	"errors"
	"fmt"

	"rentfleet/internal/core"
	"rentfleet/internal/models"
	"rentfleet/internal/repositories/interfaces"
	"rentfleet/internal/utils"
	"rentfleet/internal/validators"
	"rentfleet/pkg/logger"
	"rentfleet/pkg/resilience"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleResource is the caller-facing shape of a vehicle: the stored record
// plus its location association sets.
type VehicleResource struct {
	*models.Vehicle
	PickupLocationIDs  []string `json:"pickup_location_ids"`
	DropoffLocationIDs []string `json:"dropoff_location_ids"`
}

// VehicleService orchestrates vehicle synchronization across the document
// store, the association collection and blob storage. It is the only
// component exposed to handlers.
type VehicleService interface {
	Create(ctx context.Context, companyID primitive.ObjectID, req *validators.VehicleCreateRequest) (*VehicleResource, error)
	Update(ctx context.Context, companyID, vehicleID primitive.ObjectID, req *validators.VehicleUpdateRequest) (*VehicleResource, error)
	Delete(ctx context.Context, companyID, vehicleID primitive.ObjectID) error
	Get(ctx context.Context, companyID, vehicleID primitive.ObjectID) (*VehicleResource, error)
	List(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*VehicleResource, int64, error)
	UpdateStatus(ctx context.Context, companyID, vehicleID primitive.ObjectID, status models.VehicleStatus) error
}

type vehicleService struct {
	vehicleRepo     interfaces.VehicleRepository
	associationRepo interfaces.VehicleLocationRepository
	resolver        *LocationResolver
	media           MediaService
	junction        *JunctionSynchronizer
	logger          *logger.Logger
}

func NewVehicleService(
	vehicleRepo interfaces.VehicleRepository,
	associationRepo interfaces.VehicleLocationRepository,
	resolver *LocationResolver,
	media MediaService,
	junction *JunctionSynchronizer,
	log *logger.Logger,
) VehicleService {
	return &vehicleService{
		vehicleRepo:     vehicleRepo,
		associationRepo: associationRepo,
		resolver:        resolver,
		media:           media,
		junction:        junction,
		logger:          log,
	}
}

func (s *vehicleService) Create(ctx context.Context, companyID primitive.ObjectID, req *validators.VehicleCreateRequest) (*VehicleResource, error) {
	if companyID.IsZero() {
		return nil, &core.AuthorizationError{Reason: "no company identity on the request"}
	}

	if violations := validators.ValidateVehicleCreate(req); len(violations) > 0 {
		return nil, &core.ValidationError{Violations: violations}
	}

	plate := validators.NormalizePlate(req.LicensePlate)
	if err := s.checkPlateAvailable(ctx, companyID, plate); err != nil {
		return nil, err
	}

	pickupIDs, err := s.resolver.Resolve(ctx, companyID, models.LocationRolePickup, req.PickupLocationIDs)
	if err != nil {
		return nil, err
	}
	dropoffIDs, err := s.resolver.Resolve(ctx, companyID, models.LocationRoleDropoff, req.DropoffLocationIDs)
	if err != nil {
		return nil, err
	}

	// The id is generated before the insert so image blobs land in their
	// final namespace instead of a scratch one.
	vehicleID := primitive.NewObjectID()
	namespace := fmt.Sprintf("vehicles/%s/%s", companyID.Hex(), vehicleID.Hex())

	mediaResult, err := s.media.Reconcile(ctx, namespace, nil, req.Images, len(req.Images) == 0)
	if err != nil {
		return nil, err
	}

	status := models.VehicleStatus(req.Status)
	if status == "" {
		status = models.VehicleStatusActive
	}

	vehicle := &models.Vehicle{
		ID:           vehicleID,
		CompanyID:    companyID,
		Make:         validators.SanitizeInput(req.Make),
		Model:        validators.SanitizeInput(req.Model),
		Year:         req.Year,
		LicensePlate: plate,
		Color:        validators.SanitizeInput(req.Color),
		Transmission: models.Transmission(req.Transmission),
		FuelType:     models.FuelType(req.FuelType),
		Seats:        req.Seats,
		DailyRate:    req.DailyRate,
		Deposit:      req.Deposit,
		Status:       status,
		Features:     req.Features,
		Images:       mediaResult.Images,
	}

	err = resilience.Do(ctx, "vehicles.insert", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.vehicleRepo.Create(ctx, vehicle)
		})
	if err != nil {
		s.media.DeleteRefs(ctx, mediaResult.Uploaded)
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, &core.ConflictError{Field: "license_plate", Value: plate}
		}
		return nil, err
	}

	if err := s.junction.Sync(ctx, vehicleID, pickupIDs, dropoffIDs); err != nil {
		// A vehicle row without its associations is a half-created
		// resource nothing depends on yet; roll it back so the caller
		// can retry cleanly.
		s.rollbackCreate(ctx, vehicleID, mediaResult.Uploaded)
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"vehicle_id": vehicleID.Hex(),
		"company_id": companyID.Hex(),
	}).Info("Vehicle created")

	return s.getResource(ctx, vehicleID)
}

func (s *vehicleService) Update(ctx context.Context, companyID, vehicleID primitive.ObjectID, req *validators.VehicleUpdateRequest) (*VehicleResource, error) {
	vehicle, err := s.authorize(ctx, companyID, vehicleID)
	if err != nil {
		return nil, err
	}

	if violations := validators.ValidateVehicleUpdate(req); len(violations) > 0 {
		return nil, &core.ValidationError{Violations: violations}
	}

	plate := validators.NormalizePlate(req.LicensePlate)
	if plate != vehicle.LicensePlate {
		if err := s.checkPlateAvailable(ctx, companyID, plate); err != nil {
			return nil, err
		}
	}

	pickupIDs, err := s.resolver.Resolve(ctx, companyID, models.LocationRolePickup, req.PickupLocationIDs)
	if err != nil {
		return nil, err
	}
	dropoffIDs, err := s.resolver.Resolve(ctx, companyID, models.LocationRoleDropoff, req.DropoffLocationIDs)
	if err != nil {
		return nil, err
	}

	namespace := fmt.Sprintf("vehicles/%s/%s", companyID.Hex(), vehicleID.Hex())
	mediaResult, err := s.media.Reconcile(ctx, namespace, vehicle.Images, req.Images, req.RemoveImages)
	if err != nil {
		return nil, err
	}

	status := models.VehicleStatus(req.Status)
	if status == "" {
		status = vehicle.Status
	}

	updates := map[string]interface{}{
		"make":          validators.SanitizeInput(req.Make),
		"model":         validators.SanitizeInput(req.Model),
		"year":          req.Year,
		"license_plate": plate,
		"color":         validators.SanitizeInput(req.Color),
		"transmission":  models.Transmission(req.Transmission),
		"fuel_type":     models.FuelType(req.FuelType),
		"seats":         req.Seats,
		"daily_rate":    req.DailyRate,
		"deposit":       req.Deposit,
		"status":        status,
		"features":      req.Features,
		"images":        mediaResult.Images,
	}

	err = resilience.Do(ctx, "vehicles.update", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.vehicleRepo.Update(ctx, vehicleID, updates)
		})
	if err != nil {
		s.media.DeleteRefs(ctx, mediaResult.Uploaded)
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, &core.ConflictError{Field: "license_plate", Value: plate}
		}
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, &core.NotFoundError{Resource: "vehicle", ID: vehicleID.Hex()}
		}
		return nil, err
	}

	// The row survives a failed junction step on update: there is prior
	// state worth keeping, and the error tells the caller to retry.
	if err := s.junction.Sync(ctx, vehicleID, pickupIDs, dropoffIDs); err != nil {
		return nil, err
	}

	resource, err := s.getResource(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if resource.LicensePlate != plate || !sameStringList(resource.Images, mediaResult.Images) {
		return nil, &core.InconsistencyError{
			Resource: "vehicle",
			Detail:   "read-back after update does not match the written record; a concurrent change likely interfered, retry the operation",
		}
	}

	s.logger.WithField("vehicle_id", vehicleID.Hex()).Info("Vehicle updated")

	return resource, nil
}

func (s *vehicleService) Delete(ctx context.Context, companyID, vehicleID primitive.ObjectID) error {
	vehicle, err := s.authorize(ctx, companyID, vehicleID)
	if err != nil {
		return err
	}

	// Blob deletes are best-effort: an orphaned image is a degraded state,
	// a vehicle the owner cannot delete is a bug.
	s.media.DeleteRefs(ctx, vehicle.Images)

	err = resilience.Do(ctx, "vehicles.delete", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.vehicleRepo.Delete(ctx, vehicleID)
		})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return &core.NotFoundError{Resource: "vehicle", ID: vehicleID.Hex()}
		}
		return err
	}

	err = resilience.Do(ctx, "associations.delete", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.associationRepo.DeleteByVehicleID(ctx, vehicleID)
		})
	if err != nil {
		// The vehicle is gone; dangling association rows are unreachable
		// through any read path and get cleaned up on the next write.
		s.logger.WithError(err).WithField("vehicle_id", vehicleID.Hex()).Warn("Failed to remove association rows after vehicle delete")
	}

	s.logger.WithField("vehicle_id", vehicleID.Hex()).Info("Vehicle deleted")

	return nil
}

func (s *vehicleService) Get(ctx context.Context, companyID, vehicleID primitive.ObjectID) (*VehicleResource, error) {
	if _, err := s.authorize(ctx, companyID, vehicleID); err != nil {
		return nil, err
	}
	return s.getResource(ctx, vehicleID)
}

func (s *vehicleService) List(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*VehicleResource, int64, error) {
	if companyID.IsZero() {
		return nil, 0, &core.AuthorizationError{Reason: "no company identity on the request"}
	}

	type vehiclePage struct {
		vehicles []*models.Vehicle
		total    int64
	}

	page, err := resilience.DoValue(ctx, "vehicles.list", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) (vehiclePage, error) {
			vehicles, total, err := s.vehicleRepo.GetByCompanyID(ctx, companyID, params)
			return vehiclePage{vehicles: vehicles, total: total}, err
		})
	if err != nil {
		return nil, 0, err
	}

	resources := make([]*VehicleResource, 0, len(page.vehicles))
	for _, vehicle := range page.vehicles {
		resources = append(resources, &VehicleResource{Vehicle: vehicle})
	}

	return resources, page.total, nil
}

func (s *vehicleService) UpdateStatus(ctx context.Context, companyID, vehicleID primitive.ObjectID, status models.VehicleStatus) error {
	if !status.Valid() {
		return &core.ValidationError{Violations: []core.FieldViolation{{
			Field:   "status",
			Message: "Status must be active, maintenance or retired",
		}}}
	}

	if _, err := s.authorize(ctx, companyID, vehicleID); err != nil {
		return err
	}

	return resilience.Do(ctx, "vehicles.update_status", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) error {
			return s.vehicleRepo.UpdateStatus(ctx, vehicleID, status)
		})
}

// authorize loads the vehicle and checks tenant ownership. It fails closed:
// a missing company identity or a foreign vehicle aborts before any write.
func (s *vehicleService) authorize(ctx context.Context, companyID, vehicleID primitive.ObjectID) (*models.Vehicle, error) {
	if companyID.IsZero() {
		return nil, &core.AuthorizationError{Reason: "no company identity on the request"}
	}

	vehicle, err := resilience.DoValue(ctx, "vehicles.get", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) (*models.Vehicle, error) {
			return s.vehicleRepo.GetByID(ctx, vehicleID)
		})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, &core.NotFoundError{Resource: "vehicle", ID: vehicleID.Hex()}
		}
		return nil, err
	}

	if vehicle.CompanyID != companyID {
		return nil, &core.AuthorizationError{Reason: "vehicle belongs to a different company"}
	}

	return vehicle, nil
}

func (s *vehicleService) checkPlateAvailable(ctx context.Context, companyID primitive.ObjectID, plate string) error {
	_, err := resilience.DoValue(ctx, "vehicles.plate_check", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) (*models.Vehicle, error) {
			return s.vehicleRepo.GetByLicensePlate(ctx, companyID, plate)
		})
	if err == nil {
		return &core.ConflictError{Field: "license_plate", Value: plate}
	}
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil
	}
	return err
}

// getResource reads the vehicle and its associations back and builds the
// caller-facing shape.
func (s *vehicleService) getResource(ctx context.Context, vehicleID primitive.ObjectID) (*VehicleResource, error) {
	vehicle, err := resilience.DoValue(ctx, "vehicles.get", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) (*models.Vehicle, error) {
			return s.vehicleRepo.GetByID(ctx, vehicleID)
		})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, &core.NotFoundError{Resource: "vehicle", ID: vehicleID.Hex()}
		}
		return nil, err
	}

	associations, err := resilience.DoValue(ctx, "associations.get", utils.DatabaseTimeout, utils.MsgDatabaseTimeout,
		func(ctx context.Context) ([]*models.VehicleLocation, error) {
			return s.associationRepo.GetByVehicleID(ctx, vehicleID)
		})
	if err != nil {
		return nil, err
	}

	resource := &VehicleResource{Vehicle: vehicle}
	for _, assoc := range associations {
		switch assoc.Role {
		case models.LocationRolePickup:
			resource.PickupLocationIDs = append(resource.PickupLocationIDs, assoc.LocationID.Hex())
		case models.LocationRoleDropoff:
			resource.DropoffLocationIDs = append(resource.DropoffLocationIDs, assoc.LocationID.Hex())
		}
	}

	return resource, nil
}

// rollbackCreate undoes a partial create: the row and this operation's own
// uploads. Failures are logged only; the original error is what the caller
// needs to see.
func (s *vehicleService) rollbackCreate(ctx context.Context, vehicleID primitive.ObjectID, uploaded []string) {
	if err := s.vehicleRepo.Delete(ctx, vehicleID); err != nil {
		s.logger.WithError(err).WithField("vehicle_id", vehicleID.Hex()).Error("Failed to roll back partially created vehicle")
	}
	s.media.DeleteRefs(ctx, uploaded)
}

func sameStringList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
