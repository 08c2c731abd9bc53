package synchttp

import (
	"net/http/httptest"
	"testing"

	"github.com/cuemby/burrow/pkg/replica"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/sync"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/vclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReplica(t *testing.T) *replica.Replica {
	t.Helper()
	r, err := replica.Open(replica.Config{Store: store.NewMemStore()})
	require.NoError(t, err)
	return r
}

func TestClientGetSyncInfo(t *testing.T) {
	remote := newTestReplica(t)
	srv := httptest.NewServer(NewHandler(remote))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	uid, err := c.ReplicaUID()
	require.NoError(t, err)
	assert.Equal(t, remote.ReplicaUID(), uid)

	targetUID, targetGen, sourceGenKnown, _, err := c.GetSyncInfo("some-source")
	require.NoError(t, err)
	assert.Equal(t, remote.ReplicaUID(), targetUID)
	assert.Equal(t, 0, targetGen)
	assert.Equal(t, 0, sourceGenKnown)
}

func TestClientSyncExchangeRoundTrip(t *testing.T) {
	local := newTestReplica(t)
	remote := newTestReplica(t)

	srv := httptest.NewServer(NewHandler(remote))
	defer srv.Close()
	target := NewClient(srv.URL, nil)

	res, err := local.Put(types.Document{
		DocID:    "doc-1",
		Revision: vclock.MustParse(local.ReplicaUID() + ":1"),
		Body:     []byte(`{"x":1}`),
	}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeInserted, res.Outcome)

	result, err := sync.Sync(local, target, nil)
	require.NoError(t, err)
	assert.False(t, result.NoOp)
	assert.Equal(t, 1, result.DocsSent)

	doc, ok, err := remote.Get("doc-1", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"x":1}`), doc.Body)

	// A second sync with nothing new on either side is a no-op.
	noop, err := sync.Sync(local, target, nil)
	require.NoError(t, err)
	assert.True(t, noop.NoOp)
}

func TestClientRecordSyncInfo(t *testing.T) {
	remote := newTestReplica(t)
	srv := httptest.NewServer(NewHandler(remote))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.RecordSyncInfo("peer-a", 5, "T-deadbeef", nil)
	require.NoError(t, err)

	gen, transID, err := remote.SyncState("peer-a")
	require.NoError(t, err)
	assert.Equal(t, 5, gen)
	assert.Equal(t, "T-deadbeef", transID)
}

func TestClientSurfacesRemoteErrorCode(t *testing.T) {
	remote := newTestReplica(t)
	srv := httptest.NewServer(NewHandler(remote))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, _, _, err := c.SyncExchange("src", []sync.ExchangeDoc{{
		Doc: types.Document{DocID: "bad id/", Revision: vclock.MustParse("a:1"), Body: []byte(`{}`)},
	}}, 0, "", nil)
	require.Error(t, err)
	assert.Equal(t, types.CodeInvalidDocID, types.CodeOf(err))
}
