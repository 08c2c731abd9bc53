/*
Package metrics provides Prometheus metrics and health/readiness endpoints
for a Burrow replica.

Replica-level gauges (Generation, DocumentsTotal, TombstonesTotal,
ConflictedDocumentsTotal) are refreshed periodically by a Collector
(see collector.go) that scans the replica's document store and
transaction log. Operation counters (PutOutcomesTotal,
SyncExchangesTotal, ...) are incremented inline by pkg/replica and
pkg/sync as operations complete.

Health endpoints (HealthHandler, ReadyHandler, LivenessHandler) track
named components via RegisterComponent/UpdateComponent; "store" and
"replica" are treated as critical for readiness.

# Usage

	metrics.RegisterComponent("store", true, "")
	metrics.RegisterComponent("replica", true, "")
	http.Handle("/metrics", metrics.Handler())
	http.HandleFunc("/healthz", metrics.HealthHandler())
	http.HandleFunc("/readyz", metrics.ReadyHandler())
*/
package metrics
