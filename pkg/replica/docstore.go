package replica

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/vclock"
)

// storedDoc is the on-disk representation of a document's current
// revision, independent of its conflict set.
type storedDoc struct {
	Revision string `json:"revision"`
	Body     []byte `json:"body"`
}

func (d storedDoc) toDocument(docID types.DocID, hasConflicts bool) (types.Document, error) {
	clock, err := vclock.Parse(d.Revision)
	if err != nil {
		return types.Document{}, fmt.Errorf("replica: corrupt revision for %s: %w", docID, err)
	}
	return types.Document{
		DocID:        docID,
		Revision:     clock,
		Body:         d.Body,
		HasConflicts: hasConflicts,
	}, nil
}

func putStoredDoc(b store.Bucket, docID types.DocID, doc storedDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("replica: marshal document %s: %w", docID, err)
	}
	return b.Put([]byte(docID), data)
}

func getStoredDoc(b store.Bucket, docID types.DocID) (storedDoc, bool, error) {
	data := b.Get([]byte(docID))
	if data == nil {
		return storedDoc{}, false, nil
	}
	var d storedDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return storedDoc{}, false, fmt.Errorf("replica: corrupt document %s: %w", docID, err)
	}
	return d, true, nil
}

// storedConflicts is the on-disk representation of a doc_id's
// conflict set.
type storedConflicts []storedConflictEntry

type storedConflictEntry struct {
	Revision string `json:"revision"`
	Body     []byte `json:"body"`
}

func getConflicts(b store.Bucket, docID types.DocID) ([]types.ConflictEntry, error) {
	data := b.Get([]byte(docID))
	if data == nil {
		return nil, nil
	}
	var stored storedConflicts
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("replica: corrupt conflict set for %s: %w", docID, err)
	}
	out := make([]types.ConflictEntry, 0, len(stored))
	for _, e := range stored {
		clock, err := vclock.Parse(e.Revision)
		if err != nil {
			return nil, fmt.Errorf("replica: corrupt conflict revision for %s: %w", docID, err)
		}
		out = append(out, types.ConflictEntry{Revision: clock, Body: e.Body})
	}
	return out, nil
}

func putConflicts(b store.Bucket, docID types.DocID, entries []types.ConflictEntry) error {
	if len(entries) == 0 {
		return b.Delete([]byte(docID))
	}
	stored := make(storedConflicts, 0, len(entries))
	for _, e := range entries {
		stored = append(stored, storedConflictEntry{Revision: e.Revision.String(), Body: e.Body})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("replica: marshal conflict set for %s: %w", docID, err)
	}
	return b.Put([]byte(docID), data)
}

// Get returns the current document for docID, or (Document{}, false)
// if it does not exist. Tombstones are filtered unless
// includeDeleted.
func (r *Replica) Get(docID types.DocID, includeDeleted bool) (types.Document, bool, error) {
	var (
		doc   types.Document
		found bool
	)
	err := r.store.View(func(tx store.Tx) error {
		d, conflicts, ok, err := r.readDocument(tx, docID)
		if err != nil || !ok {
			return err
		}
		if d.IsDeleted() && !includeDeleted {
			return nil
		}
		doc = d
		doc.HasConflicts = len(conflicts) > 0
		found = true
		return nil
	})
	return doc, found, err
}

func (r *Replica) readDocument(tx store.Tx, docID types.DocID) (types.Document, []types.ConflictEntry, bool, error) {
	docs, err := tx.Bucket(bucketDocuments)
	if err != nil {
		return types.Document{}, nil, false, err
	}
	sd, ok, err := getStoredDoc(docs, docID)
	if err != nil || !ok {
		return types.Document{}, nil, ok, err
	}
	confB, err := tx.Bucket(bucketConflicts)
	if err != nil {
		return types.Document{}, nil, false, err
	}
	conflicts, err := getConflicts(confB, docID)
	if err != nil {
		return types.Document{}, nil, false, err
	}
	doc, err := sd.toDocument(docID, len(conflicts) > 0)
	if err != nil {
		return types.Document{}, nil, false, err
	}
	return doc, conflicts, true, nil
}

// GetMany returns the documents named by ids, in input order,
// skipping ids that are not present. Tombstones are skipped unless
// includeDeleted. has_conflicts is populated only if checkConflicts
// (avoiding a conflicts-bucket lookup per id otherwise).
func (r *Replica) GetMany(ids []types.DocID, checkConflicts, includeDeleted bool) ([]types.Document, error) {
	var out []types.Document
	err := r.store.View(func(tx store.Tx) error {
		docs, err := tx.Bucket(bucketDocuments)
		if err != nil {
			return err
		}
		confB, err := tx.Bucket(bucketConflicts)
		if err != nil {
			return err
		}
		for _, id := range ids {
			sd, ok, err := getStoredDoc(docs, id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			hasConflicts := false
			if checkConflicts {
				conflicts, err := getConflicts(confB, id)
				if err != nil {
					return err
				}
				hasConflicts = len(conflicts) > 0
			}
			doc, err := sd.toDocument(id, hasConflicts)
			if err != nil {
				return err
			}
			if doc.IsDeleted() && !includeDeleted {
				continue
			}
			out = append(out, doc)
		}
		return nil
	})
	return out, err
}

// GetAll returns every stored document (subject to includeDeleted)
// and the transaction log generation read just before the scan, so
// the caller can anchor a subsequent changes_since call to a known
// point.
func (r *Replica) GetAll(includeDeleted bool) ([]types.Document, int, error) {
	var (
		out []types.Document
		gen int
	)
	err := r.store.View(func(tx store.Tx) error {
		g, _, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		gen = g

		docs, err := tx.Bucket(bucketDocuments)
		if err != nil {
			return err
		}
		confB, err := tx.Bucket(bucketConflicts)
		if err != nil {
			return err
		}
		return docs.ForEach(func(k, v []byte) error {
			var sd storedDoc
			if err := json.Unmarshal(v, &sd); err != nil {
				return fmt.Errorf("replica: corrupt document %s: %w", k, err)
			}
			docID := types.DocID(k)
			conflicts, err := getConflicts(confB, docID)
			if err != nil {
				return err
			}
			doc, err := sd.toDocument(docID, len(conflicts) > 0)
			if err != nil {
				return err
			}
			if doc.IsDeleted() && !includeDeleted {
				return nil
			}
			out = append(out, doc)
			return nil
		})
	})
	return out, gen, err
}

// ConflictsOf returns docID's conflict view: if it has conflicts, the
// current revision (with HasConflicts=true) followed by each
// conflict entry as a synthetic Document; otherwise an empty slice.
func (r *Replica) ConflictsOf(docID types.DocID) ([]types.Document, error) {
	var out []types.Document
	err := r.store.View(func(tx store.Tx) error {
		doc, conflicts, ok, err := r.readDocument(tx, docID)
		if err != nil || !ok || len(conflicts) == 0 {
			return err
		}
		doc.HasConflicts = true
		out = append(out, doc)
		for _, c := range conflicts {
			out = append(out, types.Document{
				DocID:        docID,
				Revision:     c.Revision,
				Body:         c.Body,
				HasConflicts: true,
			})
		}
		return nil
	})
	return out, err
}
