package meteostat

import "time"

// Cache stores raw downloads keyed by their endpoint-relative path. The
// bulk dumps are regenerated daily upstream, so implementations are expected
// to honor maxAge on reads rather than evict eagerly.
type Cache interface {
	// Get returns the cached payload for key if it exists and is younger
	// than maxAge. The second return is false on a miss.
	Get(key string, maxAge time.Duration) ([]byte, bool, error)

	// Set stores the payload for key, replacing any previous entry.
	Set(key string, payload []byte) error
}
