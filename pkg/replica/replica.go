package replica

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/index"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/google/uuid"
)

const (
	bucketMeta      = "meta"
	bucketDocuments = "documents"
	bucketConflicts = "conflicts"
	bucketLog       = "log"
	bucketSyncState = "sync_state"

	metaKeyReplicaUID = "replica_uid"
)

// Replica is a single local copy of the document database: the
// document store, transaction log, sync-state table, and the
// put/resolve/delete state machine that arbitrates writes across
// them.
type Replica struct {
	uid      string
	store    store.Store
	notifier index.Notifier
}

// Config configures Open.
type Config struct {
	// Store is the backend the replica persists to. Required.
	Store store.Store

	// Notifier, if set, is called with the resulting document every
	// time a write changes a document's current content (put,
	// delete, resolve, conflict promotion). Converged/superseded
	// no-op outcomes do not notify.
	Notifier index.Notifier
}

// Open opens a replica against the given store, assigning a fresh
// replica_uid on first use and reusing the stored one thereafter. The
// replica_uid is immutable once assigned (§3 Replica Identity).
func Open(cfg Config) (*Replica, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("replica: Config.Store is required")
	}
	r := &Replica{store: cfg.Store, notifier: cfg.Notifier}

	err := cfg.Store.Update(func(tx store.Tx) error {
		b, err := tx.Bucket(bucketMeta)
		if err != nil {
			return err
		}
		if existing := b.Get([]byte(metaKeyReplicaUID)); existing != nil {
			r.uid = string(existing)
			return nil
		}
		r.uid = uuid.NewString()
		return b.Put([]byte(metaKeyReplicaUID), []byte(r.uid))
	})
	if err != nil {
		return nil, fmt.Errorf("replica: open: %w", err)
	}

	log.WithReplica(r.uid).Info().Msg("replica opened")
	return r, nil
}

// ReplicaUID returns this replica's stable identity.
func (r *Replica) ReplicaUID() string {
	return r.uid
}

// Close releases the underlying store.
func (r *Replica) Close() error {
	return r.store.Close()
}
