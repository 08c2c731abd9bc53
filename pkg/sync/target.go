package sync

import "github.com/cuemby/burrow/pkg/types"

// TraceFunc is the sync test-injection hook (§5 "Trace hook"),
// invoked at named waypoints during an exchange. A non-nil return
// aborts the sync with that error.
type TraceFunc func(waypoint string) error

// Waypoints invoked on a local Target during a sync. A single
// sync_exchange call visits the last three in the order listed;
// WaypointRecordSyncInfo fires from RecordSyncInfo, after the exchange.
const (
	WaypointRecordSyncInfo     = "record_sync_info"
	WaypointBeforeWhatsChanged = "before whats_changed"
	WaypointAfterWhatsChanged  = "after whats_changed"
	WaypointBeforeGetDocs      = "before get_docs"
)

// ExchangeDoc is one document attributed with the peer-local
// generation/transaction_id at which it was written, as carried over
// the wire in both directions of §6.4.
type ExchangeDoc struct {
	Doc           types.Document
	Generation    int
	TransactionID string
}

// Target is the abstract sync-target capability (§1, §4.6, §4.7):
// everything an Orchestrator needs from a peer, whether that peer is
// an in-process Replica (Local) or reached over HTTP
// (pkg/synchttp.Client).
type Target interface {
	// ReplicaUID returns the target's stable replica identity.
	ReplicaUID() (string, error)

	// GetSyncInfo reports the target's own generation, plus its
	// recorded watermark for sourceUID: (targetUID, targetGen,
	// sourceGenKnownByTarget, sourceTransKnownByTarget).
	GetSyncInfo(sourceUID string) (targetUID string, targetGen int, sourceGenKnownByTarget int, sourceTransKnownByTarget string, err error)

	// RecordSyncInfo upserts the target's watermark for sourceUID,
	// firing WaypointRecordSyncInfo before the write.
	RecordSyncInfo(sourceUID string, sourceGen int, sourceTransID string, trace TraceFunc) error

	// SyncExchange runs one directional exchange: the source sends
	// docs (already attributed with the source's local gen/trans_id
	// per doc), the target applies them and returns whatever the
	// source is missing, plus the target's generation/trans_id after
	// applying the stream.
	SyncExchange(sourceUID string, docs []ExchangeDoc, targetGenKnownBySource int, targetTransKnownBySource string, trace TraceFunc) (newTargetGen int, newTargetTransID string, returned []ExchangeDoc, err error)
}
