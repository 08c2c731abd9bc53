/*
Package types defines the core data structures shared across Burrow's
replica engine: documents, conflict entries, transaction log rows,
sync-state watermarks, and the stable error Code taxonomy used for
CLI exit codes and HTTP sync responses.

These types carry no behavior beyond small value-level helpers
(ValidateDocID, BodyEqual); the state machines that operate on them
live in pkg/replica and pkg/sync.
*/
package types
