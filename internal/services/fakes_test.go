package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"rentfleet/internal/models"
	"rentfleet/internal/repositories/interfaces"
	"rentfleet/internal/utils"
	"rentfleet/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const fakeCDNPrefix = "https://cdn.example.com/"

type fakeLocationRepo struct {
	mu        sync.Mutex
	locations map[primitive.ObjectID]*models.Location
	getErr    error
}

func newFakeLocationRepo(locations ...*models.Location) *fakeLocationRepo {
	repo := &fakeLocationRepo{locations: make(map[primitive.ObjectID]*models.Location)}
	for _, loc := range locations {
		repo.locations[loc.ID] = loc
	}
	return repo
}

func (r *fakeLocationRepo) Create(ctx context.Context, location *models.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if location.ID.IsZero() {
		location.ID = primitive.NewObjectID()
	}
	r.locations[location.ID] = location
	return nil
}

func (r *fakeLocationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc, ok := r.locations[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return loc, nil
}

func (r *fakeLocationRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[id]; !ok {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *fakeLocationRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(r.locations, id)
	return nil
}

func (r *fakeLocationRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Location, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*models.Location
	for _, id := range ids {
		if loc, ok := r.locations[id]; ok {
			found = append(found, loc)
		}
	}
	return found, nil
}

func (r *fakeLocationRepo) GetByCompanyID(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Location, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*models.Location
	for _, loc := range r.locations {
		if loc.CompanyID == companyID {
			found = append(found, loc)
		}
	}
	return found, int64(len(found)), nil
}

func (r *fakeLocationRepo) GetHeadquarters(ctx context.Context, companyID primitive.ObjectID) (*models.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, loc := range r.locations {
		if loc.CompanyID == companyID && loc.IsHeadquarters {
			return loc, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

type fakeVehicleRepo struct {
	mu         sync.Mutex
	vehicles   map[primitive.ObjectID]*models.Vehicle
	deletedIDs []primitive.ObjectID
	createErr  error
	updateErr  error
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (r *fakeVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.vehicles {
		if existing.CompanyID == vehicle.CompanyID && existing.LicensePlate == vehicle.LicensePlate {
			return interfaces.ErrDuplicateKey
		}
	}
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	r.vehicles[vehicle.ID] = vehicle
	return nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if plate, ok := updates["license_plate"].(string); ok {
		for _, existing := range r.vehicles {
			if existing.ID != id && existing.CompanyID == vehicle.CompanyID && existing.LicensePlate == plate {
				return interfaces.ErrDuplicateKey
			}
		}
		vehicle.LicensePlate = plate
	}
	if make_, ok := updates["make"].(string); ok {
		vehicle.Make = make_
	}
	if model, ok := updates["model"].(string); ok {
		vehicle.Model = model
	}
	if year, ok := updates["year"].(int); ok {
		vehicle.Year = year
	}
	if color, ok := updates["color"].(string); ok {
		vehicle.Color = color
	}
	if transmission, ok := updates["transmission"].(models.Transmission); ok {
		vehicle.Transmission = transmission
	}
	if fuelType, ok := updates["fuel_type"].(models.FuelType); ok {
		vehicle.FuelType = fuelType
	}
	if seats, ok := updates["seats"].(int); ok {
		vehicle.Seats = seats
	}
	if rate, ok := updates["daily_rate"].(float64); ok {
		vehicle.DailyRate = rate
	}
	if deposit, ok := updates["deposit"].(*float64); ok {
		vehicle.Deposit = deposit
	}
	if status, ok := updates["status"].(models.VehicleStatus); ok {
		vehicle.Status = status
	}
	if features, ok := updates["features"].([]string); ok {
		vehicle.Features = features
	}
	if images, ok := updates["images"].([]string); ok {
		vehicle.Images = images
	}
	vehicle.UpdatedAt = time.Now()
	return nil
}

func (r *fakeVehicleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(r.vehicles, id)
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *fakeVehicleRepo) GetByCompanyID(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*models.Vehicle
	for _, vehicle := range r.vehicles {
		if vehicle.CompanyID == companyID {
			copied := *vehicle
			found = append(found, &copied)
		}
	}
	return found, int64(len(found)), nil
}

func (r *fakeVehicleRepo) GetByLicensePlate(ctx context.Context, companyID primitive.ObjectID, licensePlate string) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, vehicle := range r.vehicles {
		if vehicle.CompanyID == companyID && vehicle.LicensePlate == licensePlate {
			copied := *vehicle
			return &copied, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeVehicleRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VehicleStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	vehicle.Status = status
	return nil
}

func (r *fakeVehicleRepo) GetCountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, vehicle := range r.vehicles {
		if vehicle.CompanyID == companyID {
			count++
		}
	}
	return count, nil
}

type fakeAssociationRepo struct {
	mu        sync.Mutex
	rows      []*models.VehicleLocation
	insertErr error
	// dropInserts makes InsertMany report success without storing anything,
	// simulating a concurrent writer clearing the rows between the write and
	// the read-back.
	dropInserts bool
}

func newFakeAssociationRepo() *fakeAssociationRepo {
	return &fakeAssociationRepo{}
}

func (r *fakeAssociationRepo) InsertMany(ctx context.Context, associations []*models.VehicleLocation) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	if r.dropInserts {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, assoc := range associations {
		copied := *assoc
		if copied.ID.IsZero() {
			copied.ID = primitive.NewObjectID()
		}
		r.rows = append(r.rows, &copied)
	}
	return nil
}

func (r *fakeAssociationRepo) DeleteByVehicleID(ctx context.Context, vehicleID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.VehicleID != vehicleID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakeAssociationRepo) GetByVehicleID(ctx context.Context, vehicleID primitive.ObjectID) ([]*models.VehicleLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*models.VehicleLocation
	for _, row := range r.rows {
		if row.VehicleID == vehicleID {
			copied := *row
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (r *fakeAssociationRepo) CountByLocationID(ctx context.Context, locationID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.LocationID == locationID {
			count++
		}
	}
	return count, nil
}

type fakeStorage struct {
	mu          sync.Mutex
	blobs       map[string][]byte
	deletedKeys []string
	uploadCalls int
	// failUploads makes the first N Upload calls fail.
	failUploads int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadCalls++
	if s.uploadCalls <= s.failUploads {
		return nil, errors.New("simulated upload failure")
	}
	data, err := io.ReadAll(request.Reader)
	if err != nil {
		return nil, err
	}
	s.blobs[request.Key] = data
	return &storage.UploadResponse{
		Key:  request.Key,
		URL:  fakeCDNPrefix + request.Key,
		Size: int64(len(data)),
	}, nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	s.deletedKeys = append(s.deletedKeys, key)
	return nil
}

func (s *fakeStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return fakeCDNPrefix + key, nil
}

func (s *fakeStorage) FileExists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}

func (s *fakeStorage) KeyFromURL(url string) (string, bool) {
	if len(url) > len(fakeCDNPrefix) && url[:len(fakeCDNPrefix)] == fakeCDNPrefix {
		return url[len(fakeCDNPrefix):], true
	}
	return "", false
}

func pickupLocation(companyID primitive.ObjectID) *models.Location {
	return &models.Location{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		Name:      fmt.Sprintf("Depot %s", primitive.NewObjectID().Hex()[:6]),
		IsPickup:  true,
	}
}

func dropoffLocation(companyID primitive.ObjectID) *models.Location {
	return &models.Location{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		Name:      fmt.Sprintf("Depot %s", primitive.NewObjectID().Hex()[:6]),
		IsDropoff: true,
	}
}

func bothRolesLocation(companyID primitive.ObjectID) *models.Location {
	return &models.Location{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		Name:      fmt.Sprintf("Depot %s", primitive.NewObjectID().Hex()[:6]),
		IsPickup:  true,
		IsDropoff: true,
	}
}
