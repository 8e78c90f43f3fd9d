package core

// KVStore is a durable key-value store holding whole serialized collections.
// The ledger reads each collection once at startup and rewrites the affected
// collections after every mutation.
type KVStore interface {
	// Load returns the stored value for key; ok is false when the key
	// has never been written.
	Load(key string) (value []byte, ok bool, err error)
	// Save writes all entries atomically: either every key is updated
	// or none is.
	Save(entries map[string][]byte) error
}
