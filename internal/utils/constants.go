package utils

import "time"

// Application Constants
const (
	AppName    = "RentFleet"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour

	// File Upload
	MaxImageSize        = 10 * 1024 * 1024 // 10MB decoded
	MaxImageWidth       = 4096
	MaxImageHeight      = 4096
	MaxImagesPerVehicle = 12

	// Media upload throttling. Uploads run sequentially with a fixed pause
	// to stay under the storage dependency's burst rate limits.
	ImageUploadPause   = 250 * time.Millisecond
	ImageUploadRetries = 3
	ImageUploadBackoff = 200 * time.Millisecond

	// External call budgets
	DatabaseTimeout      = 10 * time.Second
	StorageUploadTimeout = 30 * time.Second
	StorageDeleteTimeout = 10 * time.Second
)

// Error Messages
const (
	ErrValidationFailed = "validation failed"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized access"
	ErrForbidden        = "access forbidden"
)

// Timeout messages shown to callers. Each names the operation so the retry
// suggestion makes sense in the dashboard.
const (
	MsgDatabaseTimeout = "The database is taking too long to respond. Please try again."
	MsgUploadTimeout   = "Uploading an image took too long. Please try again with a smaller image."
	MsgDeleteTimeout   = "Removing stored images took too long. Please try again."
)
