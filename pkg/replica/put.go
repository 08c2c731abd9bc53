package replica

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/vclock"
	"github.com/google/uuid"
)

// newTransactionID mints an opaque, locally-unique transaction_id.
func newTransactionID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("replica: generate transaction_id: %w", err)
	}
	return "T-" + hex.EncodeToString(buf), nil
}

// validateBody checks §6.2: a body is either the tombstone marker or
// JSON that parses to a top-level object.
func validateBody(body []byte) error {
	if types.IsTombstone(body) {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return types.NewError(types.CodeInvalidJSON, "body is not valid JSON")
	}
	if _, ok := v.(map[string]interface{}); !ok {
		return types.NewError(types.CodeInvalidJSON, "body must be a JSON object")
	}
	return nil
}

// Put runs the put state machine (§4.5): validates doc, compares its
// revision against the currently stored one using the vector-clock
// algebra, and applies exactly one of {inserted, superseded,
// converged, conflicted}. attribution is non-nil when the put
// originates from a remote sync exchange.
func (r *Replica) Put(doc types.Document, saveConflict bool, attribution *types.Attribution) (types.PutResult, error) {
	if err := types.ValidateDocID(doc.DocID); err != nil {
		return types.PutResult{}, err
	}
	if err := validateBody(doc.Body); err != nil {
		return types.PutResult{}, err
	}

	timer := metrics.NewTimer()
	var result types.PutResult

	err := r.store.Update(func(tx store.Tx) error {
		if attribution != nil {
			knownGen, knownTrans, err := getSyncState(tx, attribution.PeerUID)
			if err != nil {
				return err
			}
			switch {
			case attribution.PeerGeneration < knownGen:
				stored, _, ok, err := r.readDocument(tx, doc.DocID)
				if err != nil {
					return err
				}
				if ok && stored.Revision.IsNewer(doc.Revision) {
					gen, _, err := currentGeneration(tx)
					if err != nil {
						return err
					}
					result = types.PutResult{Outcome: types.OutcomeSuperseded, Generation: gen, Document: stored}
					return nil
				}
				return types.NewError(types.CodeInvalidGeneration, "source's claimed peer_gen is stale and not superseded locally")
			case attribution.PeerGeneration == knownGen:
				if attribution.PeerTransactionID != knownTrans {
					return types.NewError(types.CodeInvalidTransactionID, "peer_trans does not match recorded sync state")
				}
				gen, _, err := currentGeneration(tx)
				if err != nil {
					return err
				}
				stored, _, _, err := r.readDocument(tx, doc.DocID)
				if err != nil {
					return err
				}
				result = types.PutResult{Outcome: types.OutcomeSuperseded, Generation: gen, Document: stored}
				return nil
			}
		}

		res, err := r.applyPut(tx, doc, saveConflict)
		if err != nil {
			return err
		}
		result = res

		if attribution != nil {
			if err := setSyncState(tx, attribution.PeerUID, attribution.PeerGeneration, attribution.PeerTransactionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return types.PutResult{}, err
	}

	timer.ObserveDuration(metrics.PutDuration)
	metrics.PutOutcomesTotal.WithLabelValues(string(result.Outcome)).Inc()
	return result, nil
}

// applyPut implements the comparison/outcome/conflict-pruning/write
// steps of §4.5, assuming source validation (if any) already passed.
func (r *Replica) applyPut(tx store.Tx, doc types.Document, saveConflict bool) (types.PutResult, error) {
	stored, conflicts, exists, err := r.readDocument(tx, doc.DocID)
	if err != nil {
		return types.PutResult{}, err
	}
	nv := doc.Revision

	switch {
	case !exists:
		if nv.IsEmpty() {
			nv = nv.Increment(r.uid)
		}
		return r.writeCurrent(tx, doc.DocID, nv, doc.Body, nil, types.OutcomeInserted)

	case nv.Equal(stored.Revision):
		gen, _, err := currentGeneration(tx)
		if err != nil {
			return types.PutResult{}, err
		}
		return types.PutResult{Outcome: types.OutcomeConverged, Generation: gen, Document: stored}, nil

	case nv.IsNewer(stored.Revision):
		prunedConflicts, prunedVC, merged, err := pruneConflicts(nv, doc.Body, conflicts)
		if err != nil {
			return types.PutResult{}, err
		}
		outcome := types.OutcomeInserted
		finalVC := nv
		if merged {
			finalVC = prunedVC.Increment(r.uid)
			outcome = types.OutcomeSuperseded
		}
		return r.writeCurrent(tx, doc.DocID, finalVC, doc.Body, prunedConflicts, outcome)

	case stored.Revision.IsNewer(nv):
		gen, _, err := currentGeneration(tx)
		if err != nil {
			return types.PutResult{}, err
		}
		return types.PutResult{Outcome: types.OutcomeSuperseded, Generation: gen, Document: stored}, nil

	default: // concurrent
		if types.BodyEqual(doc.Body, stored.Body) {
			mergedVC := nv.Maximize(stored.Revision).Increment(r.uid)
			return r.writeCurrent(tx, doc.DocID, mergedVC, doc.Body, conflicts, types.OutcomeSuperseded)
		}
		if !saveConflict {
			gen, _, err := currentGeneration(tx)
			if err != nil {
				return types.PutResult{}, err
			}
			return types.PutResult{Outcome: types.OutcomeConflicted, Generation: gen, Document: stored}, nil
		}
		newConflicts := append(append([]types.ConflictEntry{}, conflicts...), types.ConflictEntry{
			Revision: stored.Revision,
			Body:     stored.Body,
		})
		return r.writeCurrent(tx, doc.DocID, nv, doc.Body, newConflicts, types.OutcomeConflicted)
	}
}

// pruneConflicts applies §4.5's conflict-pruning algorithm: every
// entry strictly superseded by nv is dropped; content-equal entries
// are merged into nv and dropped; the rest are retained. It returns
// the retained entries and the merged nv. merged reports whether any
// content-equal auto-resolve occurred, which forces the caller to
// re-increment the merged nv.
func pruneConflicts(nv vclock.Clock, body []byte, conflicts []types.ConflictEntry) ([]types.ConflictEntry, vclock.Clock, bool, error) {
	if len(conflicts) == 0 {
		return nil, nv, false, nil
	}
	retained := make([]types.ConflictEntry, 0, len(conflicts))
	merged := false
	for _, e := range conflicts {
		switch {
		case nv.IsNewer(e.Revision):
			continue
		case types.BodyEqual(body, e.Body):
			nv = nv.Maximize(e.Revision)
			merged = true
		default:
			retained = append(retained, e)
		}
	}
	return retained, nv, merged, nil
}

// writeCurrent persists (vc, body) as docID's current revision,
// stores the resulting conflict set, and appends one transaction log
// entry. Used by every applyPut branch that performs a write.
func (r *Replica) writeCurrent(tx store.Tx, docID types.DocID, vc vclock.Clock, body []byte, conflicts []types.ConflictEntry, outcome types.PutOutcome) (types.PutResult, error) {
	docs, err := tx.Bucket(bucketDocuments)
	if err != nil {
		return types.PutResult{}, err
	}
	if err := putStoredDoc(docs, docID, storedDoc{Revision: vc.String(), Body: body}); err != nil {
		return types.PutResult{}, err
	}

	confB, err := tx.Bucket(bucketConflicts)
	if err != nil {
		return types.PutResult{}, err
	}
	if err := putConflicts(confB, docID, conflicts); err != nil {
		return types.PutResult{}, err
	}

	transID, err := newTransactionID()
	if err != nil {
		return types.PutResult{}, err
	}
	gen, err := appendLog(tx, docID, transID)
	if err != nil {
		return types.PutResult{}, err
	}

	result := types.PutResult{
		Outcome:    outcome,
		Generation: gen,
		Document: types.Document{
			DocID:        docID,
			Revision:     vc,
			Body:         body,
			HasConflicts: len(conflicts) > 0,
		},
	}
	if r.notifier != nil {
		r.notifier.Notify(result.Document)
	}
	return result, nil
}

// Create inserts body under a freshly minted doc_id (EXPANSION D:
// create_doc-style auto doc_id allocation), the way Open mints a
// fresh replica UID with uuid.NewString() rather than asking the
// caller to supply one. The new document starts at
// vclock.Empty().Increment(replica_uid), same as any other
// first-write-to-a-doc_id via Put.
func (r *Replica) Create(body []byte) (types.Document, error) {
	docID := types.DocID(uuid.NewString())
	doc := types.Document{
		DocID:    docID,
		Revision: vclock.Empty().Increment(r.uid),
		Body:     body,
	}
	result, err := r.Put(doc, false, nil)
	if err != nil {
		return types.Document{}, err
	}
	return result.Document, nil
}

// Delete tombstones docID. Requires a non-tombstone current entry
// with no conflicts whose revision equals the caller's revision.
func (r *Replica) Delete(docID types.DocID, revision vclock.Clock) (types.PutResult, error) {
	if err := types.ValidateDocID(docID); err != nil {
		return types.PutResult{}, err
	}

	var result types.PutResult
	err := r.store.Update(func(tx store.Tx) error {
		stored, conflicts, exists, err := r.readDocument(tx, docID)
		if err != nil {
			return err
		}
		if !exists {
			return types.NewError(types.CodeDocumentDoesNotExist, string(docID))
		}
		if stored.IsDeleted() {
			return types.NewError(types.CodeDocumentAlreadyDeleted, string(docID))
		}
		if len(conflicts) > 0 {
			return types.NewError(types.CodeConflicted, string(docID))
		}
		if !stored.Revision.Equal(revision) {
			return types.NewError(types.CodeRevisionConflict, string(docID))
		}

		newVC := stored.Revision.Increment(r.uid)
		res, err := r.writeCurrent(tx, docID, newVC, types.Tombstone, nil, types.OutcomeInserted)
		result = res
		return err
	})
	if err != nil {
		return types.PutResult{}, err
	}
	return result, nil
}

// Resolve asserts that supersededRevs (and optionally the current
// revision, if listed) are resolved in favor of body, per §4.5. It
// always writes: the new revision is the maximize-then-increment of
// every listed clock, either overwriting current or being added as a
// new conflict entry.
func (r *Replica) Resolve(docID types.DocID, body []byte, supersededRevs []vclock.Clock) (types.PutResult, error) {
	if err := types.ValidateDocID(docID); err != nil {
		return types.PutResult{}, err
	}
	if err := validateBody(body); err != nil {
		return types.PutResult{}, err
	}

	var result types.PutResult
	err := r.store.Update(func(tx store.Tx) error {
		stored, conflicts, exists, err := r.readDocument(tx, docID)
		if err != nil {
			return err
		}

		newVC := vclock.Empty()
		if exists {
			newVC = stored.Revision
		}
		for _, rev := range supersededRevs {
			newVC = newVC.Maximize(rev)
		}
		newVC = newVC.Increment(r.uid)

		currentSuperseded := !exists
		if exists {
			for _, rev := range supersededRevs {
				if rev.Equal(stored.Revision) {
					currentSuperseded = true
					break
				}
			}
		}

		remaining := make([]types.ConflictEntry, 0, len(conflicts))
		for _, e := range conflicts {
			keep := true
			for _, rev := range supersededRevs {
				if rev.Equal(e.Revision) {
					keep = false
					break
				}
			}
			if keep {
				remaining = append(remaining, e)
			}
		}

		if currentSuperseded {
			res, err := r.writeCurrent(tx, docID, newVC, body, remaining, types.OutcomeSuperseded)
			result = res
			return err
		}

		// Current revision was not listed as superseded: it stays
		// current, and (new_vc, body) is promoted into the conflict
		// set instead (§4.5 resolve step 2).
		finalConflicts := append(remaining, types.ConflictEntry{Revision: newVC, Body: body})
		confB, err := tx.Bucket(bucketConflicts)
		if err != nil {
			return err
		}
		if err := putConflicts(confB, docID, finalConflicts); err != nil {
			return err
		}
		transID, err := newTransactionID()
		if err != nil {
			return err
		}
		gen, err := appendLog(tx, docID, transID)
		if err != nil {
			return err
		}
		result = types.PutResult{
			Outcome:    types.OutcomeConflicted,
			Generation: gen,
			Document: types.Document{
				DocID:        docID,
				Revision:     stored.Revision,
				Body:         stored.Body,
				HasConflicts: true,
			},
		}
		if r.notifier != nil {
			r.notifier.Notify(result.Document)
		}
		return nil
	})
	if err != nil {
		return types.PutResult{}, err
	}
	return result, nil
}
