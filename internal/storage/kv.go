// Package storage defines the persistence boundary: a synchronous key-value
// byte store. All document-store and knowledge-base state is serialized
// through this boundary as human-diffable JSON.
package storage

// KV is the storage adapter injected into the document store and knowledge
// base at construction. Implementations must make Set durable before
// returning.
type KV interface {
	// Get returns the value for key and whether the key was present.
	Get(key string) ([]byte, bool, error)

	// Set durably writes value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
