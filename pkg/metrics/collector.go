package metrics

import (
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

// replicaSource is the subset of *replica.Replica the Collector needs.
// It is expressed as a local interface (rather than importing
// pkg/replica) because pkg/replica already imports pkg/metrics to
// report PutOutcomesTotal/PutDuration inline, and a Collector
// importing pkg/replica back would create an import cycle.
type replicaSource interface {
	CurrentGeneration() (int, string, error)
	GetAll(includeDeleted bool) ([]types.Document, int, error)
}

// Collector periodically refreshes the replica-level gauges
// (Generation, DocumentsTotal, TombstonesTotal,
// ConflictedDocumentsTotal) by scanning the replica's document store.
type Collector struct {
	replica replicaSource
	stopCh  chan struct{}
}

// NewCollector creates a collector over r (typically *replica.Replica,
// which satisfies replicaSource).
func NewCollector(r replicaSource) *Collector {
	return &Collector{replica: r, stopCh: make(chan struct{})}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	gen, _, err := c.replica.CurrentGeneration()
	if err != nil {
		return
	}
	Generation.Set(float64(gen))

	docs, _, err := c.replica.GetAll(true)
	if err != nil {
		return
	}

	var live, tombstones, conflicted int
	for _, d := range docs {
		if d.IsDeleted() {
			tombstones++
		} else {
			live++
		}
		if d.HasConflicts {
			conflicted++
		}
	}
	DocumentsTotal.Set(float64(live))
	TombstonesTotal.Set(float64(tombstones))
	ConflictedDocumentsTotal.Set(float64(conflicted))
}
