/*
Package log provides structured logging for Burrow using zerolog.

The log package wraps zerolog to give every replica operation a
JSON-structured, leveled event: document writes, put/resolve/delete
outcomes, and sync exchanges. Component loggers attach replica_uid,
doc_id, or peer_uid fields so a single log stream can be filtered down
to one replica's view of a multi-replica test.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})
	replicaLog := log.WithComponent("replica").With().Str("replica_uid", uid).Logger()
	replicaLog.Debug().Str("doc_id", id).Str("outcome", "inserted").Int("generation", gen).Msg("put applied")

Levels follow zerolog's conventions: Debug for per-document detail,
Info for replica lifecycle (open/close, sync start/end), Warn for
recoverable protocol conditions (superseded/conflicted outcomes), Error
for backend failures.
*/
package log
