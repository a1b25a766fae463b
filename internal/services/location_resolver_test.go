package services

import (
	"context"
	"testing"

	"rentfleet/internal/core"
	"rentfleet/internal/models"
	"rentfleet/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveEmptyInput(t *testing.T) {
	companyID := primitive.NewObjectID()
	resolver := NewLocationResolver(newFakeLocationRepo(), logger.NewNop())

	ids, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolveFiltersSentinelsAndGarbage(t *testing.T) {
	companyID := primitive.NewObjectID()
	loc := pickupLocation(companyID)
	resolver := NewLocationResolver(newFakeLocationRepo(loc), logger.NewNop())

	ids, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, []string{
		SentinelCustomPickup,
		"",
		"not-an-object-id",
		loc.ID.Hex(),
		SentinelCustomDropoff,
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, loc.ID, ids[0])
}

func TestResolveOnlySentinelsYieldsEmptySet(t *testing.T) {
	companyID := primitive.NewObjectID()
	resolver := NewLocationResolver(newFakeLocationRepo(), logger.NewNop())

	ids, err := resolver.Resolve(context.Background(), companyID, models.LocationRoleDropoff, []string{
		SentinelCustomPickup, SentinelCustomDropoff, "",
	})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolveDeduplicatesPreservingOrder(t *testing.T) {
	companyID := primitive.NewObjectID()
	first := pickupLocation(companyID)
	second := pickupLocation(companyID)
	resolver := NewLocationResolver(newFakeLocationRepo(first, second), logger.NewNop())

	ids, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, []string{
		first.ID.Hex(), second.ID.Hex(), first.ID.Hex(),
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, first.ID, ids[0])
	assert.Equal(t, second.ID, ids[1])
}

func TestResolveReportsMissingIDs(t *testing.T) {
	companyID := primitive.NewObjectID()
	known := pickupLocation(companyID)
	unknown := primitive.NewObjectID()
	resolver := NewLocationResolver(newFakeLocationRepo(known), logger.NewNop())

	_, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, []string{
		known.ID.Hex(), unknown.Hex(),
	})
	var refErr *core.ReferentialError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []string{unknown.Hex()}, refErr.MissingIDs)
	assert.Empty(t, refErr.InvalidIDs)
}

func TestResolveRejectsForeignTenantLocation(t *testing.T) {
	companyID := primitive.NewObjectID()
	foreign := pickupLocation(primitive.NewObjectID())
	resolver := NewLocationResolver(newFakeLocationRepo(foreign), logger.NewNop())

	_, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, []string{foreign.ID.Hex()})
	var refErr *core.ReferentialError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, []string{foreign.ID.Hex()}, refErr.InvalidIDs)
	assert.Contains(t, refErr.Reasons[foreign.ID.Hex()], "different company")
}

func TestResolveRejectsWrongRole(t *testing.T) {
	companyID := primitive.NewObjectID()
	dropoffOnly := dropoffLocation(companyID)
	resolver := NewLocationResolver(newFakeLocationRepo(dropoffOnly), logger.NewNop())

	_, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, []string{dropoffOnly.ID.Hex()})
	var refErr *core.ReferentialError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, []string{dropoffOnly.ID.Hex()}, refErr.InvalidIDs)
	assert.Contains(t, refErr.Reasons[dropoffOnly.ID.Hex()], "not enabled for pickup")
}

func TestResolveAccumulatesAllViolations(t *testing.T) {
	companyID := primitive.NewObjectID()
	foreign := pickupLocation(primitive.NewObjectID())
	wrongRole := dropoffLocation(companyID)
	missing := primitive.NewObjectID()
	resolver := NewLocationResolver(newFakeLocationRepo(foreign, wrongRole), logger.NewNop())

	_, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, []string{
		foreign.ID.Hex(), wrongRole.ID.Hex(), missing.Hex(),
	})
	var refErr *core.ReferentialError
	require.ErrorAs(t, err, &refErr)
	assert.Len(t, refErr.OffendingIDs(), 3)
}

func TestResolveIdempotentForSameInput(t *testing.T) {
	companyID := primitive.NewObjectID()
	loc := bothRolesLocation(companyID)
	resolver := NewLocationResolver(newFakeLocationRepo(loc), logger.NewNop())

	input := []string{loc.ID.Hex(), SentinelCustomPickup, loc.ID.Hex()}
	first, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, input)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), companyID, models.LocationRolePickup, input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
