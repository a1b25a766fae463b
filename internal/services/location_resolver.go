package services

import (
	"context"
	"fmt"
	"time"

	"rentfleet/internal/core"
	"rentfleet/internal/models"
	"rentfleet/internal/repositories/interfaces"
	"rentfleet/pkg/logger"
	"rentfleet/pkg/resilience"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UI placeholder markers for "custom" picker entries. They travel through
// the same field as real ids and must never be persisted.
const (
	SentinelCustomPickup  = "CUSTOM_PICKUP"
	SentinelCustomDropoff = "CUSTOM_DROPOFF"
)

const locationFetchTimeout = 10 * time.Second

// LocationResolver validates caller-supplied location ids against tenant
// ownership and role flags before they are allowed anywhere near the
// junction collection.
type LocationResolver struct {
	locationRepo interfaces.LocationRepository
	logger       *logger.Logger
}

func NewLocationResolver(locationRepo interfaces.LocationRepository, log *logger.Logger) *LocationResolver {
	return &LocationResolver{
		locationRepo: locationRepo,
		logger:       log,
	}
}

// Resolve filters and validates rawIDs for the given tenant and role. It
// returns the subset of ids that are safe to persist, in input order and
// deduplicated. Violations are accumulated across the whole list so the
// caller gets one complete report. An empty input (or one consisting only
// of sentinels and garbage) resolves to an empty set, which is a valid
// terminal state.
func (r *LocationResolver) Resolve(ctx context.Context, companyID primitive.ObjectID, role models.LocationRole, rawIDs []string) ([]primitive.ObjectID, error) {
	ids := r.filterIDs(rawIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	locations, err := resilience.DoValue(ctx, "locations.fetch", locationFetchTimeout,
		"Looking up locations took too long. Please try again.",
		func(ctx context.Context) ([]*models.Location, error) {
			return r.locationRepo.GetByIDs(ctx, ids)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve locations: %w", err)
	}

	byID := make(map[primitive.ObjectID]*models.Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}

	refErr := &core.ReferentialError{Reasons: map[string]string{}}
	for _, id := range ids {
		loc, found := byID[id]
		if !found {
			refErr.MissingIDs = append(refErr.MissingIDs, id.Hex())
			continue
		}
		if loc.CompanyID != companyID {
			refErr.InvalidIDs = append(refErr.InvalidIDs, id.Hex())
			refErr.Reasons[id.Hex()] = "location belongs to a different company"
			continue
		}
		if !loc.SupportsRole(role) {
			refErr.InvalidIDs = append(refErr.InvalidIDs, id.Hex())
			refErr.Reasons[id.Hex()] = fmt.Sprintf("location is not enabled for %s", role)
		}
	}

	if len(refErr.MissingIDs) > 0 || len(refErr.InvalidIDs) > 0 {
		return nil, refErr
	}

	return ids, nil
}

// filterIDs strips sentinels, blanks and malformed identifiers, and
// deduplicates while preserving input order. Malformed ids are discarded,
// not errors: the UI mixes free-text picker values into the same field.
func (r *LocationResolver) filterIDs(rawIDs []string) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(rawIDs))
	var ids []primitive.ObjectID

	for _, raw := range rawIDs {
		if raw == "" || raw == SentinelCustomPickup || raw == SentinelCustomDropoff {
			continue
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			if r.logger != nil {
				r.logger.WithField("location_id", raw).Debug("Discarding malformed location id")
			}
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
