package domain

import "errors"

var (
	// ErrInvalidCoordinate is returned for non-finite or out-of-range coordinates.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrReferenceDataUnavailable marks an empty or missing country or city table.
	// It is never fatal: attribution degrades to the ocean/remote defaults.
	ErrReferenceDataUnavailable = errors.New("reference data unavailable")

	// ErrProcessingFailed is the single outcome of a pipeline run that could not
	// complete. No partial result accompanies it.
	ErrProcessingFailed = errors.New("processing failed")
)
