package sync

import (
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/replica"
	"github.com/cuemby/burrow/pkg/types"
)

// Result summarizes one Sync call for callers and metrics.
type Result struct {
	DocsSent     int
	DocsReceived int
	NoOp         bool
}

// Sync runs the full bidirectional sync algorithm of §4.7 between
// local and target: discover target state, validate local's claimed
// knowledge, send local's changes since the target's last-seen
// generation, apply whatever the target returns, and record the
// target's new watermark — recording local's own watermark at the
// target only if every local write during the exchange originated
// from the target (step 10).
func Sync(local *replica.Replica, target Target, trace TraceFunc) (Result, error) {
	timer := metrics.NewTimer()
	res, err := sync(local, target, trace)
	timer.ObserveDuration(metrics.SyncDuration)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else if res.NoOp {
		outcome = "noop"
	}
	metrics.SyncExchangesTotal.WithLabelValues(outcome).Inc()
	metrics.SyncDocsSentTotal.Add(float64(res.DocsSent))
	metrics.SyncDocsReceivedTotal.Add(float64(res.DocsReceived))
	return res, err
}

func sync(local *replica.Replica, target Target, trace TraceFunc) (Result, error) {
	localUID := local.ReplicaUID()

	targetUID, targetGen, localGenKnownByTarget, localTransKnownByTarget, err := target.GetSyncInfo(localUID)
	if err != nil {
		return Result{}, err
	}

	if err := local.Validate(localGenKnownByTarget, localTransKnownByTarget); err != nil {
		return Result{}, err
	}

	targetGenKnownByLocal, targetTransKnownByLocal, err := local.SyncState(targetUID)
	if err != nil {
		return Result{}, err
	}

	changes, localGen, _, err := local.ChangesSince(localGenKnownByTarget)
	if err != nil {
		return Result{}, err
	}

	if localGen == localGenKnownByTarget && targetGen == targetGenKnownByLocal {
		return Result{NoOp: true}, nil
	}

	localGenBeforeSync := localGen

	toSend := make([]ExchangeDoc, 0, len(changes))
	for _, ch := range changes {
		doc, ok, err := local.Get(ch.DocID, true)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}
		toSend = append(toSend, ExchangeDoc{Doc: doc, Generation: ch.Generation, TransactionID: ch.TransactionID})
	}

	newTargetGen, newTargetTrans, returned, err := target.SyncExchange(localUID, toSend, targetGenKnownByLocal, targetTransKnownByLocal, trace)
	if err != nil {
		return Result{}, err
	}

	insertedOrConflicted := 0
	for _, rd := range returned {
		putRes, err := local.Put(rd.Doc, true, &types.Attribution{
			PeerUID:           targetUID,
			PeerGeneration:    rd.Generation,
			PeerTransactionID: rd.TransactionID,
		})
		if err != nil {
			return Result{}, err
		}
		if putRes.Outcome == types.OutcomeInserted || putRes.Outcome == types.OutcomeConflicted {
			insertedOrConflicted++
		}
	}

	newLocalGen, newLocalTrans, err := local.CurrentGeneration()
	if err != nil {
		return Result{}, err
	}

	if err := local.SetSyncState(targetUID, newTargetGen, newTargetTrans); err != nil {
		return Result{}, err
	}

	if insertedOrConflicted == newLocalGen-localGenBeforeSync {
		if err := target.RecordSyncInfo(localUID, newLocalGen, newLocalTrans, trace); err != nil {
			return Result{}, err
		}
	}

	return Result{DocsSent: len(toSend), DocsReceived: len(returned)}, nil
}
