/*
Package replica implements the replication engine's central database
handle: document storage with per-document vector-clock revisions and
conflict sets (C2), the append-only transaction log (C3), the
per-peer sync-state table (C4), and the put/resolve/delete state
machine that arbitrates writes using the vector-clock algebra from
pkg/vclock (C5).

A Replica owns a store.Store and partitions its keyspace into a
handful of buckets: "meta" (replica identity), "documents" (current
revision + body per doc_id), "conflicts" (conflict entries per
doc_id), "log" (generation-ordered transaction log), and "sync_state"
(per-peer watermarks). All cross-bucket invariants (§4.5: a put writes
to "documents" and appends to "log" atomically, and optionally touches
"sync_state") are enforced by running the whole operation inside a
single store.Store.Update transaction.
*/
package replica
