package store

// Store is the transactional key/value capability the replica engine
// requires of its persistence backend (§6.5): atomic multi-row
// transactions, monotonic auto-assigned integer keys for the
// append-only transaction log, ordered scans, and conflict-free
// upsert for single-row config and sync state. The core depends only
// on this interface; Bolt is the concrete backend Burrow ships (see
// bolt.go), but any backend satisfying Store works.
type Store interface {
	// Update runs fn in a read-write transaction. If fn returns an
	// error, all writes made through tx are rolled back.
	Update(fn func(tx Tx) error) error

	// View runs fn in a read-only transaction.
	View(fn func(tx Tx) error) error

	// Close releases the backend's resources.
	Close() error
}

// Tx is a single store transaction. Buckets are not declared up
// front; a bucket comes into existence the first time a read-write
// transaction asks for it.
type Tx interface {
	// Bucket returns the named bucket, creating it if it does not yet
	// exist. Buckets are keyed by []byte and partition the store's
	// keyspace by concern (documents, log, sync state, ...).
	Bucket(name string) (Bucket, error)
}

// Bucket is one named keyspace within a transaction.
type Bucket interface {
	// Get returns the value stored under key, or nil if absent. The
	// returned slice is only valid for the lifetime of the
	// transaction; callers that need to retain it must copy it.
	Get(key []byte) []byte

	// Put upserts key to value.
	Put(key, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key []byte) error

	// ForEach calls fn for every (key, value) pair in the bucket in
	// ascending key order, stopping early if fn returns an error.
	ForEach(fn func(key, value []byte) error) error

	// Cursor returns a Cursor positioned before the first key,
	// supporting ranged scans ordered by key.
	Cursor() Cursor

	// NextSequence returns a monotonically increasing integer unique
	// to this bucket, suitable for the transaction log's auto-assigned
	// generation numbers. Sequence values start at 1.
	NextSequence() (uint64, error)
}

// Cursor iterates a Bucket's keys in ascending order.
type Cursor interface {
	// First positions the cursor at the first key and returns it, or
	// (nil, nil) if the bucket is empty.
	First() (key, value []byte)

	// Next advances the cursor and returns the next key, or
	// (nil, nil) past the end.
	Next() (key, value []byte)

	// Last positions the cursor at the last key and returns it, or
	// (nil, nil) if the bucket is empty.
	Last() (key, value []byte)

	// Seek positions the cursor at the first key >= seek and returns
	// it, or (nil, nil) if none.
	Seek(seek []byte) (key, value []byte)
}
