package store

import "context"

// KV is the persistent key-value collaborator the store synchronises with.
// Values are JSON-encoded arrays keyed by collection name. Implementations
// are expected to be last-writer-wins with no coordination between writers.
type KV interface {
	// Get returns the stored value for key; the bool reports presence.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set replaces the value stored for key.
	Set(ctx context.Context, key, value string) error
}

// Persisted collection keys.
const (
	KeyFeeCategories    = "feeCategories"
	KeyUpcomingPayments = "upcomingPayments"
	KeyNotifications    = "notifications"
)
