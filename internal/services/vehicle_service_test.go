package services

import (
	"context"
	"errors"
	"testing"

	"rentfleet/internal/core"
	"rentfleet/internal/models"
	"rentfleet/internal/validators"
	"rentfleet/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type vehicleFixture struct {
	service      VehicleService
	vehicleRepo  *fakeVehicleRepo
	locationRepo *fakeLocationRepo
	assocRepo    *fakeAssociationRepo
	store        *fakeStorage
	companyID    primitive.ObjectID
}

func newVehicleFixture(locations ...*models.Location) *vehicleFixture {
	log := logger.NewNop()
	vehicleRepo := newFakeVehicleRepo()
	locationRepo := newFakeLocationRepo(locations...)
	assocRepo := newFakeAssociationRepo()
	store := newFakeStorage()

	resolver := NewLocationResolver(locationRepo, log)
	media := NewMediaService(store, log)
	junction := NewJunctionSynchronizer(assocRepo, log)

	return &vehicleFixture{
		service:      NewVehicleService(vehicleRepo, assocRepo, resolver, media, junction, log),
		vehicleRepo:  vehicleRepo,
		locationRepo: locationRepo,
		assocRepo:    assocRepo,
		store:        store,
		companyID:    primitive.NewObjectID(),
	}
}

func validCreateRequest() *validators.VehicleCreateRequest {
	return &validators.VehicleCreateRequest{
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2022,
		LicensePlate: "ab-123-cd",
		Color:        "Blue",
		Transmission: "automatic",
		FuelType:     "petrol",
		Seats:        5,
		DailyRate:    49.99,
	}
}

func updateRequestFrom(create *validators.VehicleCreateRequest) *validators.VehicleUpdateRequest {
	return &validators.VehicleUpdateRequest{
		Make:         create.Make,
		Model:        create.Model,
		Year:         create.Year,
		LicensePlate: create.LicensePlate,
		Color:        create.Color,
		Transmission: create.Transmission,
		FuelType:     create.FuelType,
		Seats:        create.Seats,
		DailyRate:    create.DailyRate,
	}
}

func TestCreateVehicleNormalizesPlateAndSyncsAssociations(t *testing.T) {
	fx := newVehicleFixture()
	pickup := pickupLocation(fx.companyID)
	dropoff := dropoffLocation(fx.companyID)
	require.NoError(t, fx.locationRepo.Create(context.Background(), pickup))
	require.NoError(t, fx.locationRepo.Create(context.Background(), dropoff))

	req := validCreateRequest()
	req.PickupLocationIDs = []string{pickup.ID.Hex(), SentinelCustomPickup}
	req.DropoffLocationIDs = []string{dropoff.ID.Hex()}

	resource, err := fx.service.Create(context.Background(), fx.companyID, req)
	require.NoError(t, err)
	assert.Equal(t, "AB-123-CD", resource.LicensePlate)
	assert.Equal(t, models.VehicleStatusActive, resource.Status)
	assert.Equal(t, []string{pickup.ID.Hex()}, resource.PickupLocationIDs)
	assert.Equal(t, []string{dropoff.ID.Hex()}, resource.DropoffLocationIDs)

	rows, err := fx.assocRepo.GetByVehicleID(context.Background(), resource.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCreateVehicleWithoutImagesOrLocations(t *testing.T) {
	fx := newVehicleFixture()

	resource, err := fx.service.Create(context.Background(), fx.companyID, validCreateRequest())
	require.NoError(t, err)
	assert.Empty(t, resource.Images)
	assert.Empty(t, resource.PickupLocationIDs)
	assert.Empty(t, resource.DropoffLocationIDs)
}

func TestCreateVehicleRejectsInvalidPayload(t *testing.T) {
	fx := newVehicleFixture()
	req := validCreateRequest()
	req.Year = 1950
	req.Seats = 99
	req.DailyRate = 10.999

	_, err := fx.service.Create(context.Background(), fx.companyID, req)
	var validationErr *core.ValidationError
	require.ErrorAs(t, err, &validationErr)
	fields := make(map[string]bool)
	for _, v := range validationErr.Violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["year"])
	assert.True(t, fields["seats"])
	assert.True(t, fields["daily_rate"])
}

func TestCreateVehicleRequiresCompanyIdentity(t *testing.T) {
	fx := newVehicleFixture()

	_, err := fx.service.Create(context.Background(), primitive.NilObjectID, validCreateRequest())
	var authErr *core.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestCreateVehicleDuplicatePlateSameTenant(t *testing.T) {
	fx := newVehicleFixture()

	_, err := fx.service.Create(context.Background(), fx.companyID, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.LicensePlate = "AB-123-cd" // same plate after normalization
	_, err = fx.service.Create(context.Background(), fx.companyID, req)
	var conflictErr *core.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "license_plate", conflictErr.Field)
	assert.Equal(t, "AB-123-CD", conflictErr.Value)
}

func TestCreateVehicleSamePlateDifferentTenant(t *testing.T) {
	fx := newVehicleFixture()

	_, err := fx.service.Create(context.Background(), fx.companyID, validCreateRequest())
	require.NoError(t, err)

	_, err = fx.service.Create(context.Background(), primitive.NewObjectID(), validCreateRequest())
	require.NoError(t, err)
}

func TestCreateVehicleRejectsForeignLocation(t *testing.T) {
	foreign := pickupLocation(primitive.NewObjectID())
	fx := newVehicleFixture(foreign)

	req := validCreateRequest()
	req.PickupLocationIDs = []string{foreign.ID.Hex()}

	_, err := fx.service.Create(context.Background(), fx.companyID, req)
	var refErr *core.ReferentialError
	require.ErrorAs(t, err, &refErr)

	// Nothing was written.
	_, total, listErr := fx.vehicleRepo.GetByCompanyID(context.Background(), fx.companyID, nil)
	require.NoError(t, listErr)
	assert.Zero(t, total)
}

func TestCreateVehicleRollsBackOnJunctionFailure(t *testing.T) {
	fx := newVehicleFixture()
	loc := pickupLocation(fx.companyID)
	require.NoError(t, fx.locationRepo.Create(context.Background(), loc))
	fx.assocRepo.insertErr = errors.New("junction write failed")

	req := validCreateRequest()
	req.PickupLocationIDs = []string{loc.ID.Hex()}

	_, err := fx.service.Create(context.Background(), fx.companyID, req)
	require.Error(t, err)

	_, total, listErr := fx.vehicleRepo.GetByCompanyID(context.Background(), fx.companyID, nil)
	require.NoError(t, listErr)
	assert.Zero(t, total, "partially created vehicle should be rolled back")
	assert.Len(t, fx.vehicleRepo.deletedIDs, 1)
}

func TestUpdateVehicleReplacesAssociations(t *testing.T) {
	fx := newVehicleFixture()
	first := bothRolesLocation(fx.companyID)
	second := bothRolesLocation(fx.companyID)
	require.NoError(t, fx.locationRepo.Create(context.Background(), first))
	require.NoError(t, fx.locationRepo.Create(context.Background(), second))

	req := validCreateRequest()
	req.PickupLocationIDs = []string{first.ID.Hex()}
	created, err := fx.service.Create(context.Background(), fx.companyID, req)
	require.NoError(t, err)

	update := updateRequestFrom(validCreateRequest())
	update.PickupLocationIDs = []string{second.ID.Hex()}
	update.DropoffLocationIDs = []string{second.ID.Hex()}

	updated, err := fx.service.Update(context.Background(), fx.companyID, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID.Hex()}, updated.PickupLocationIDs)
	assert.Equal(t, []string{second.ID.Hex()}, updated.DropoffLocationIDs)
}

func TestUpdateVehicleForeignTenantRejected(t *testing.T) {
	fx := newVehicleFixture()

	created, err := fx.service.Create(context.Background(), fx.companyID, validCreateRequest())
	require.NoError(t, err)

	update := updateRequestFrom(validCreateRequest())
	_, err = fx.service.Update(context.Background(), primitive.NewObjectID(), created.ID, update)
	var authErr *core.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestUpdateVehicleKeepsImagesWithoutExplicitRemoval(t *testing.T) {
	fx := newVehicleFixture()

	created, err := fx.service.Create(context.Background(), fx.companyID, validCreateRequest())
	require.NoError(t, err)

	// Seed stored images directly to exercise the keep path.
	require.NoError(t, fx.vehicleRepo.Update(context.Background(), created.ID, map[string]interface{}{
		"images": []string{fakeCDNPrefix + "a.png"},
	}))

	update := updateRequestFrom(validCreateRequest())
	updated, err := fx.service.Update(context.Background(), fx.companyID, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, []string{fakeCDNPrefix + "a.png"}, updated.Images)
}

func TestUpdateVehicleExplicitImageRemoval(t *testing.T) {
	fx := newVehicleFixture()

	created, err := fx.service.Create(context.Background(), fx.companyID, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, fx.vehicleRepo.Update(context.Background(), created.ID, map[string]interface{}{
		"images": []string{fakeCDNPrefix + "a.png"},
	}))

	update := updateRequestFrom(validCreateRequest())
	update.RemoveImages = true
	updated, err := fx.service.Update(context.Background(), fx.companyID, created.ID, update)
	require.NoError(t, err)
	assert.Empty(t, updated.Images)
	assert.Equal(t, []string{"a.png"}, fx.store.deletedKeys)
}

func TestDeleteVehicleRemovesAssociationsAndImages(t *testing.T) {
	fx := newVehicleFixture()
	loc := pickupLocation(fx.companyID)
	require.NoError(t, fx.locationRepo.Create(context.Background(), loc))

	req := validCreateRequest()
	req.PickupLocationIDs = []string{loc.ID.Hex()}
	created, err := fx.service.Create(context.Background(), fx.companyID, req)
	require.NoError(t, err)

	require.NoError(t, fx.vehicleRepo.Update(context.Background(), created.ID, map[string]interface{}{
		"images": []string{fakeCDNPrefix + "a.png"},
	}))

	require.NoError(t, fx.service.Delete(context.Background(), fx.companyID, created.ID))

	_, err = fx.service.Get(context.Background(), fx.companyID, created.ID)
	var notFound *core.NotFoundError
	require.ErrorAs(t, err, &notFound)

	rows, err := fx.assocRepo.GetByVehicleID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Contains(t, fx.store.deletedKeys, "a.png")
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	fx := newVehicleFixture()

	created, err := fx.service.Create(context.Background(), fx.companyID, validCreateRequest())
	require.NoError(t, err)

	err = fx.service.UpdateStatus(context.Background(), fx.companyID, created.ID, models.VehicleStatus("scrapped"))
	var validationErr *core.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestUpdateStatusTransitions(t *testing.T) {
	fx := newVehicleFixture()

	created, err := fx.service.Create(context.Background(), fx.companyID, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, fx.service.UpdateStatus(context.Background(), fx.companyID, created.ID, models.VehicleStatusMaintenance))

	got, err := fx.service.Get(context.Background(), fx.companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleStatusMaintenance, got.Status)
}
