package metrics

import (
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/vclock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeReplica struct {
	gen  int
	docs []types.Document
}

func (f *fakeReplica) CurrentGeneration() (int, string, error) {
	return f.gen, "T-fake", nil
}

func (f *fakeReplica) GetAll(includeDeleted bool) ([]types.Document, int, error) {
	return f.docs, f.gen, nil
}

func TestCollectorUpdatesGauges(t *testing.T) {
	rev := vclock.MustParse("replica-a:1")
	fake := &fakeReplica{
		gen: 7,
		docs: []types.Document{
			{DocID: "doc-1", Revision: rev, Body: []byte(`{"x":1}`), HasConflicts: false},
			{DocID: "doc-2", Revision: rev, Body: types.Tombstone, HasConflicts: false},
			{DocID: "doc-3", Revision: rev, Body: []byte(`{"y":1}`), HasConflicts: true},
		},
	}

	c := NewCollector(fake)
	c.collect()

	assert.Equal(t, float64(7), testutil.ToFloat64(Generation))
	assert.Equal(t, float64(2), testutil.ToFloat64(DocumentsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(TombstonesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(ConflictedDocumentsTotal))
}

func TestCollectorStartStop(t *testing.T) {
	fake := &fakeReplica{gen: 1}
	c := NewCollector(fake)
	c.Start()
	time.Sleep(10 * time.Millisecond)
	c.Stop()
}
