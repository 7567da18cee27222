// Package engine defines the storage capability interface shared by the
// kvs and sled engine implementations, plus the error taxonomy used
// throughout the store, protocol, and server layers.
package engine

// Kind names an engine implementation. It is persisted to server.cfg on
// first launch so later launches can refuse to open a data directory
// with the wrong engine.
type Kind string

const (
	KindKVS  Kind = "kvs"
	KindSled Kind = "sled"
)

// Engine is the storage capability surface the server and embedded CLI
// share. Implementations must be cheap to Clone and safe for concurrent
// use by the clones: this is what lets the server hand one clone to
// every pool worker.
type Engine interface {
	// Set durably stores value under key. On success the value is
	// visible to every subsequent Get, including from other clones.
	Set(key, value string) error

	// Get returns the value stored for key and true, or "" and false if
	// key is absent.
	Get(key string) (string, bool, error)

	// Remove deletes key. It fails with KeyNotFound if key is absent.
	Remove(key string) error

	// Kind reports which engine implementation this is ("kvs" or "sled").
	Kind() Kind

	// Close releases the engine's resources. Clones share the underlying
	// resources, so Close should only be called once the last clone is
	// done with them.
	Close() error
}
