/*
Package sync implements the synchronization protocol between a local
replica and a sync Target: the per-session Exchange (C6) that drives
one directional document stream against a peer using the replica's
put/changes_since/get operations, and the Orchestrator (C7) that runs
a full bidirectional sync, recording the peer's new watermark only
after a successful round trip.

Target abstracts the remote collaborator (§1: "the core only needs an
abstract sync-target capability"); Local wraps an in-process *replica.Replica
for same-process sync (tests, embedding two replicas in one binary),
and pkg/synchttp provides an HTTP-based Target for sync across a
network.
*/
package sync
