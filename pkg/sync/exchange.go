package sync

import (
	"github.com/cuemby/burrow/pkg/replica"
	"github.com/cuemby/burrow/pkg/types"
)

// Exchange is a one-shot object scoped to a single directional sync
// session against targetDB, on behalf of sourceUID (§4.6). It is
// constructed fresh for every Target.SyncExchange call.
type Exchange struct {
	db      *replica.Replica
	sourceUID string

	targetGen   int
	targetTrans string

	// seen maps doc_id to the local generation at which this exchange
	// wrote it after accepting it from the source. Docs seen at a
	// generation >= the one changes_since reports don't need to be
	// echoed back.
	seen map[types.DocID]int

	toReturn []ExchangeDoc
}

// NewExchange creates an Exchange against db, recording the source's
// claimed knowledge of db's generation (targetGenKnownBySource).
func NewExchange(db *replica.Replica, sourceUID string, targetGenKnownBySource int) *Exchange {
	return &Exchange{
		db:        db,
		sourceUID: sourceUID,
		targetGen: targetGenKnownBySource,
		seen:      make(map[types.DocID]int),
	}
}

// InsertFromSource applies one document the source sent, attributing
// it to the source replica at (sourceGen, sourceTransID). Outcomes
// inserted/converged are recorded in the seen set so they are not
// echoed back; superseded/conflicted are left untracked so
// compute_return_set sends the target's winning version back.
func (e *Exchange) InsertFromSource(doc types.Document, sourceGen int, sourceTransID string) error {
	res, err := e.db.Put(doc, false, &types.Attribution{
		PeerUID:           e.sourceUID,
		PeerGeneration:    sourceGen,
		PeerTransactionID: sourceTransID,
	})
	if err != nil {
		return err
	}
	if res.Outcome == types.OutcomeInserted || res.Outcome == types.OutcomeConverged {
		e.seen[doc.DocID] = res.Generation
	}
	return nil
}

// ComputeReturnSet scans changes_since(targetGen) and appends every
// change not already covered by the seen set to the return list, then
// advances targetGen/targetTrans to the log head.
func (e *Exchange) ComputeReturnSet(trace TraceFunc) error {
	if trace != nil {
		if err := trace(WaypointBeforeWhatsChanged); err != nil {
			return err
		}
	}

	changes, headGen, headTrans, err := e.db.ChangesSince(e.targetGen)
	if err != nil {
		return err
	}

	if trace != nil {
		if err := trace(WaypointAfterWhatsChanged); err != nil {
			return err
		}
	}

	for _, ch := range changes {
		if seenGen, ok := e.seen[ch.DocID]; ok && seenGen >= ch.Generation {
			continue
		}
		e.toReturn = append(e.toReturn, ExchangeDoc{
			Doc:           types.Document{DocID: ch.DocID},
			Generation:    ch.Generation,
			TransactionID: ch.TransactionID,
		})
	}

	e.targetGen = headGen
	e.targetTrans = headTrans
	return nil
}

// ReturnDocs fetches the current body/revision for every doc_id
// queued by ComputeReturnSet (in order) and returns them fully
// populated.
func (e *Exchange) ReturnDocs(trace TraceFunc) ([]ExchangeDoc, error) {
	if trace != nil {
		if err := trace(WaypointBeforeGetDocs); err != nil {
			return nil, err
		}
	}

	out := make([]ExchangeDoc, 0, len(e.toReturn))
	for _, pending := range e.toReturn {
		doc, ok, err := e.db.Get(pending.Doc.DocID, true)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, ExchangeDoc{
			Doc:           doc,
			Generation:    pending.Generation,
			TransactionID: pending.TransactionID,
		})
	}
	return out, nil
}

// TargetGeneration returns the target's generation/trans_id as of the
// end of ComputeReturnSet, for the caller to report back to the
// source.
func (e *Exchange) TargetGeneration() (int, string) {
	return e.targetGen, e.targetTrans
}
