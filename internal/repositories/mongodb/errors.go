package mongodb

import (
	"context"
	"errors"
	"time"

	"rentfleet/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store contract errors, shared with the interfaces package so services can
// branch on them without importing this implementation.
var (
	ErrNotFound         = interfaces.ErrNotFound
	ErrDuplicateKey     = interfaces.ErrDuplicateKey
	ErrPermissionDenied = interfaces.ErrPermissionDenied
)

// TranslateError maps driver errors onto the stable store error values while
// preserving the original error in the chain.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 13 {
		return ErrPermissionDenied
	}
	return err
}

// CacheService is the subset of the cache the repositories use for
// read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
