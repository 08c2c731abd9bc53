package types

import (
	"bytes"
	"strings"

	"github.com/cuemby/burrow/pkg/vclock"
)

// DocID identifies a document within a replica. Valid doc ids are
// non-empty, printable 7-bit ASCII, and contain neither '/' nor '\'.
type DocID string

// ValidateDocID reports whether id satisfies the doc_id constraints
// from the data model: non-empty, printable ASCII 0x20-0x7E, no '/'
// or '\'.
func ValidateDocID(id DocID) error {
	if id == "" {
		return NewError(CodeInvalidDocID, "doc_id must not be empty")
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < 0x20 || c > 0x7E {
			return NewError(CodeInvalidDocID, "doc_id must be printable 7-bit ASCII")
		}
		if c == '/' || c == '\\' {
			return NewError(CodeInvalidDocID, "doc_id must not contain '/' or '\\'")
		}
	}
	return nil
}

// Tombstone is the sentinel body of a deleted document.
var Tombstone = []byte("null")

// IsTombstone reports whether body represents a deletion marker.
func IsTombstone(body []byte) bool {
	return body == nil || strings.TrimSpace(string(body)) == "null"
}

// Document is one JSON document at a particular revision.
type Document struct {
	DocID        DocID
	Revision     vclock.Clock
	Body         []byte
	HasConflicts bool
}

// IsDeleted reports whether Body is the tombstone marker.
func (d Document) IsDeleted() bool {
	return IsTombstone(d.Body)
}

// BodyEqual reports whether two document bodies are byte-equal for
// the purposes of content convergence and conflict pruning: both
// tombstones, or byte-identical JSON. This is a raw byte comparison,
// not a semantic JSON comparison: two puts with the same fields in a
// different key order or whitespace are NOT convergent and remain a
// conflict.
func BodyEqual(a, b []byte) bool {
	if IsTombstone(a) && IsTombstone(b) {
		return true
	}
	if IsTombstone(a) != IsTombstone(b) {
		return false
	}
	return bytes.Equal(a, b)
}

// ConflictEntry is one alternative revision concurrent with a
// document's current revision.
type ConflictEntry struct {
	Revision vclock.Clock
	Body     []byte
}
