// Package store is the local persistence collaborator: an opaque
// key-value store for user library, reading progress and settings. The
// aggregation core never inspects the persisted schema and must tolerate
// any key being absent.
package store

// Store is the boundary contract consumed by the server.
type Store interface {
	// Get returns the value for key, or ok=false when absent.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Clear removes every key as a single operation.
	Clear() error

	// Close releases the underlying resources.
	Close() error
}
