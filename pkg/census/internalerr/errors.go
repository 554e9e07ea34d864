package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNoDataset        = errors.New("no data available")
	ErrRegionNotFound   = errors.New("region not found")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrUnderspecified   = errors.New("query underspecified")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("duplicate entry")
)
