package types

// LogEntry is one row of the transaction log: the generation at which
// doc_id was mutated, and the opaque transaction_id minted for that
// mutation.
type LogEntry struct {
	Generation    int
	DocID         DocID
	TransactionID string
}

// Change is one row of a changes_since(gen) result: the highest log
// entry for a doc_id above some baseline generation.
type Change struct {
	DocID         DocID
	Generation    int
	TransactionID string
}

// SyncState is the last-seen (generation, transaction_id) watermark
// recorded for a peer replica.
type SyncState struct {
	PeerUID       string
	Generation    int
	TransactionID string
}

// Attribution carries the peer-origin metadata for a put that
// originates from a remote sync exchange, as opposed to a purely
// local write.
type Attribution struct {
	PeerUID           string
	PeerGeneration    int
	PeerTransactionID string
}

// PutOutcome classifies the result of a put/resolve/delete call.
type PutOutcome string

const (
	OutcomeInserted   PutOutcome = "inserted"
	OutcomeSuperseded PutOutcome = "superseded"
	OutcomeConverged  PutOutcome = "converged"
	OutcomeConflicted PutOutcome = "conflicted"
)

// PutResult is the outcome of a put/resolve/delete call, along with
// the resulting document state when a write occurred.
type PutResult struct {
	Outcome    PutOutcome
	Generation int
	Document   Document
}
