package interfaces

import "errors"

// Stable store contract errors. Implementations translate their driver's
// failures onto these so services can branch on constraint violations
// without knowing which store is behind the interface.
var (
	ErrNotFound         = errors.New("document not found")
	ErrDuplicateKey     = errors.New("unique constraint violation")
	ErrPermissionDenied = errors.New("permission denied")
)
