package ports

// Cache is a bounded in-memory key-value store.
type Cache[K comparable, V any] interface {
	// Get returns the value for key and marks it most recently used.
	Get(key K) (V, bool)

	// Put inserts or replaces the value for key, evicting old entries when full.
	Put(key K, value V)

	// Remove deletes key if present.
	Remove(key K)

	// Len returns the number of entries.
	Len() int
}
