package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocID(t *testing.T) {
	tests := []struct {
		name    string
		id      DocID
		wantErr bool
	}{
		{name: "simple", id: "doc-1", wantErr: false},
		{name: "empty", id: "", wantErr: true},
		{name: "contains slash", id: "a/b", wantErr: true},
		{name: "contains backslash", id: `a\b`, wantErr: true},
		{name: "non-printable", id: "a\tb", wantErr: true},
		{name: "non-ascii", id: "caf\xc3\xa9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, CodeInvalidDocID, CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsTombstone(t *testing.T) {
	assert.True(t, IsTombstone(nil))
	assert.True(t, IsTombstone([]byte("null")))
	assert.True(t, IsTombstone([]byte("  null  ")))
	assert.False(t, IsTombstone([]byte(`{"a":1}`)))
}

func TestBodyEqual(t *testing.T) {
	assert.True(t, BodyEqual(nil, []byte("null")))
	assert.True(t, BodyEqual([]byte(`{"a":1,"b":2}`), []byte(`{"a":1,"b":2}`)))
	assert.False(t, BodyEqual([]byte(`{"a":1}`), []byte(`{"a":2}`)))
	assert.False(t, BodyEqual([]byte(`{"a":1}`), []byte("null")))
	// Byte equality, not semantic JSON equality: differing key order or
	// whitespace is NOT content convergence.
	assert.False(t, BodyEqual([]byte(`{"a":1,"b":2}`), []byte(`{"b":2,"a":1}`)))
	assert.False(t, BodyEqual([]byte(`{"a":1}`), []byte(`  {"a"  :  1}  `)))
}

func TestErrorCodeOf(t *testing.T) {
	err := NewError(CodeRevisionConflict, "stale revision")
	assert.Equal(t, CodeRevisionConflict, CodeOf(err))

	wrapped := Wrap(CodeInternal, "store failure", errors.New("disk full"))
	assert.Equal(t, CodeInternal, CodeOf(wrapped))
	assert.Contains(t, wrapped.Error(), "disk full")

	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain error")))

	target := NewError(CodeRevisionConflict, "")
	assert.True(t, errors.Is(err, target))
}
