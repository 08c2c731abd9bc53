package replica

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/burrow/pkg/store"
)

type syncStateValue struct {
	Generation    int    `json:"generation"`
	TransactionID string `json:"transaction_id"`
}

// getSyncState returns the recorded (generation, transaction_id) for
// peerUID, defaulting to (0, "") if this replica has never exchanged
// with that peer.
func getSyncState(tx store.Tx, peerUID string) (int, string, error) {
	b, err := tx.Bucket(bucketSyncState)
	if err != nil {
		return 0, "", err
	}
	data := b.Get([]byte(peerUID))
	if data == nil {
		return 0, "", nil
	}
	var v syncStateValue
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, "", fmt.Errorf("replica: corrupt sync state for %s: %w", peerUID, err)
	}
	return v.Generation, v.TransactionID, nil
}

// setSyncState upserts the watermark for peerUID.
func setSyncState(tx store.Tx, peerUID string, gen int, transactionID string) error {
	b, err := tx.Bucket(bucketSyncState)
	if err != nil {
		return err
	}
	data, err := json.Marshal(syncStateValue{Generation: gen, TransactionID: transactionID})
	if err != nil {
		return fmt.Errorf("replica: marshal sync state for %s: %w", peerUID, err)
	}
	return b.Put([]byte(peerUID), data)
}

// SyncState returns the recorded (generation, transaction_id)
// watermark for peerUID, defaulting to (0, "") if absent.
func (r *Replica) SyncState(peerUID string) (int, string, error) {
	var (
		gen   int
		trans string
	)
	err := r.store.View(func(tx store.Tx) error {
		g, t, err := getSyncState(tx, peerUID)
		gen, trans = g, t
		return err
	})
	return gen, trans, err
}

// SetSyncState upserts the watermark for peerUID. Exposed for C7 (the
// sync orchestrator), which records the new watermark after a
// successful exchange.
func (r *Replica) SetSyncState(peerUID string, gen int, transactionID string) error {
	return r.store.Update(func(tx store.Tx) error {
		return setSyncState(tx, peerUID, gen, transactionID)
	})
}
