package manga

import "errors"

var (
	// ErrInvalidID is returned when a global id is missing the provider:rawId separator.
	ErrInvalidID = errors.New("invalid global id")

	// ErrProviderNotFound is returned when a global id names an unregistered provider.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrPageReadingUnsupported is returned when a provider cannot serve page images.
	ErrPageReadingUnsupported = errors.New("page reading not supported by provider")
)
