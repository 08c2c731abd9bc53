package index

import (
	"encoding/json"
	"sync"

	"github.com/cuemby/burrow/pkg/types"
)

// FieldIndex is a trivial in-memory Notifier: a field-value to doc_id
// multimap over a single indexed field. It is not the index query
// engine (out of scope per §1) — there is no query language, no
// persistence, no secondary sort order — only enough to let tests
// assert that Notify fires exactly once per applied write and that
// the index it drives stays in sync with replica content.
type FieldIndex struct {
	field string

	mu         sync.Mutex
	byValue    map[string]map[string]struct{}
	valueOfDoc map[string]string

	// NotifyCount is the number of Notify calls observed, exposed for
	// tests asserting the hook fires exactly once per applied write.
	NotifyCount int
}

// NewFieldIndex returns a FieldIndex over the top-level JSON field
// named field.
func NewFieldIndex(field string) *FieldIndex {
	return &FieldIndex{
		field:      field,
		byValue:    make(map[string]map[string]struct{}),
		valueOfDoc: make(map[string]string),
	}
}

func (idx *FieldIndex) Notify(doc types.Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.NotifyCount++

	docID := string(doc.DocID)

	if oldValue, ok := idx.valueOfDoc[docID]; ok {
		delete(idx.byValue[oldValue], docID)
		if len(idx.byValue[oldValue]) == 0 {
			delete(idx.byValue, oldValue)
		}
		delete(idx.valueOfDoc, docID)
	}

	if doc.IsDeleted() {
		return
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(doc.Body, &fields); err != nil {
		return
	}
	raw, ok := fields[idx.field]
	if !ok {
		return
	}
	value, err := json.Marshal(raw)
	if err != nil {
		return
	}
	strValue := string(value)

	if idx.byValue[strValue] == nil {
		idx.byValue[strValue] = make(map[string]struct{})
	}
	idx.byValue[strValue][docID] = struct{}{}
	idx.valueOfDoc[docID] = strValue
}

// Lookup returns the doc_ids currently holding the given JSON-encoded
// field value, in no particular order.
func (idx *FieldIndex) Lookup(jsonValue string) []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	docs := idx.byValue[jsonValue]
	out := make([]string, 0, len(docs))
	for id := range docs {
		out = append(out, id)
	}
	return out
}
