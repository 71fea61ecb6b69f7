package services

import "errors"

// Service errors
var (
	// ErrDatasetNotLoaded means no table was injected
	ErrDatasetNotLoaded = errors.New("benchmark dataset not loaded")
	// ErrServiceUnavailable means a dependency is not ready to serve
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
