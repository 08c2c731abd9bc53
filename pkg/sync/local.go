package sync

import "github.com/cuemby/burrow/pkg/replica"

// Local is a Target backed by an in-process *replica.Replica: the
// "sync two replicas in one binary" case (tests, CLI loopback) where
// no network transport is involved.
type Local struct {
	db *replica.Replica
}

// NewLocal wraps db as a Target.
func NewLocal(db *replica.Replica) *Local {
	return &Local{db: db}
}

func (l *Local) ReplicaUID() (string, error) {
	return l.db.ReplicaUID(), nil
}

func (l *Local) GetSyncInfo(sourceUID string) (string, int, int, string, error) {
	targetGen, _, err := l.db.CurrentGeneration()
	if err != nil {
		return "", 0, 0, "", err
	}
	sourceGenKnown, sourceTransKnown, err := l.db.SyncState(sourceUID)
	if err != nil {
		return "", 0, 0, "", err
	}
	return l.db.ReplicaUID(), targetGen, sourceGenKnown, sourceTransKnown, nil
}

func (l *Local) RecordSyncInfo(sourceUID string, sourceGen int, sourceTransID string, trace TraceFunc) error {
	if trace != nil {
		if err := trace(WaypointRecordSyncInfo); err != nil {
			return err
		}
	}
	return l.db.SetSyncState(sourceUID, sourceGen, sourceTransID)
}

func (l *Local) SyncExchange(sourceUID string, docs []ExchangeDoc, targetGenKnownBySource int, targetTransKnownBySource string, trace TraceFunc) (int, string, []ExchangeDoc, error) {
	ex := NewExchange(l.db, sourceUID, targetGenKnownBySource)

	for _, d := range docs {
		if err := ex.InsertFromSource(d.Doc, d.Generation, d.TransactionID); err != nil {
			return 0, "", nil, err
		}
	}

	if err := ex.ComputeReturnSet(trace); err != nil {
		return 0, "", nil, err
	}

	returned, err := ex.ReturnDocs(trace)
	if err != nil {
		return 0, "", nil, err
	}

	newGen, newTrans := ex.TargetGeneration()
	return newGen, newTrans, returned, nil
}
