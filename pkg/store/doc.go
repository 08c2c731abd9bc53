/*
Package store defines the transactional key/value capability the
replica engine requires of its persistence backend (§6.5 of the
design: atomic multi-row transactions, monotonic auto-assigned
integer keys, ordered scans, conflict-free upsert) and ships two
implementations: BoltStore (go.etcd.io/bbolt, durable) and MemStore
(in-memory, for tests and ephemeral replicas).

pkg/replica depends only on the Store/Tx/Bucket/Cursor interfaces in
store.go, never on bbolt directly, so swapping backends never touches
replica logic.
*/
package store
