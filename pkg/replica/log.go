package replica

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cuemby/burrow/pkg/store"
	"github.com/cuemby/burrow/pkg/types"
)

type logValue struct {
	DocID         types.DocID `json:"doc_id"`
	TransactionID string      `json:"transaction_id"`
}

func genKey(gen int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(gen))
	return k
}

func genFromKey(k []byte) int {
	return int(binary.BigEndian.Uint64(k))
}

// appendLog allocates the next generation (current_max + 1) and
// appends (docID, transactionID) atomically within tx.
func appendLog(tx store.Tx, docID types.DocID, transactionID string) (int, error) {
	b, err := tx.Bucket(bucketLog)
	if err != nil {
		return 0, err
	}
	seq, err := b.NextSequence()
	if err != nil {
		return 0, fmt.Errorf("replica: allocate generation: %w", err)
	}
	gen := int(seq)
	data, err := json.Marshal(logValue{DocID: docID, TransactionID: transactionID})
	if err != nil {
		return 0, fmt.Errorf("replica: marshal log entry: %w", err)
	}
	if err := b.Put(genKey(gen), data); err != nil {
		return 0, err
	}
	return gen, nil
}

// currentGeneration returns the highest generation and its
// transaction_id, or (0, "") if the log is empty.
func currentGeneration(tx store.Tx) (int, string, error) {
	b, err := tx.Bucket(bucketLog)
	if err != nil {
		return 0, "", err
	}
	k, v := b.Cursor().Last()
	if k == nil {
		return 0, "", nil
	}
	var lv logValue
	if err := json.Unmarshal(v, &lv); err != nil {
		return 0, "", fmt.Errorf("replica: corrupt log entry at generation %d: %w", genFromKey(k), err)
	}
	return genFromKey(k), lv.TransactionID, nil
}

// CurrentGeneration returns the highest generation and its
// transaction_id, or (0, "") if the log is empty.
func (r *Replica) CurrentGeneration() (int, string, error) {
	var (
		gen   int
		trans string
	)
	err := r.store.View(func(tx store.Tx) error {
		g, t, err := currentGeneration(tx)
		gen, trans = g, t
		return err
	})
	return gen, trans, err
}

// validateLog checks (gen, transactionID) against the stored log:
// gen=0 is always ok; otherwise gen must have a stored entry whose
// transaction_id exactly matches.
func validateLog(tx store.Tx, gen int, transactionID string) error {
	if gen == 0 {
		return nil
	}
	b, err := tx.Bucket(bucketLog)
	if err != nil {
		return err
	}
	data := b.Get(genKey(gen))
	if data == nil {
		return types.NewError(types.CodeInvalidGeneration, fmt.Sprintf("no log entry at generation %d", gen))
	}
	var lv logValue
	if err := json.Unmarshal(data, &lv); err != nil {
		return fmt.Errorf("replica: corrupt log entry at generation %d: %w", gen, err)
	}
	if lv.TransactionID != transactionID {
		return types.NewError(types.CodeInvalidTransactionID, fmt.Sprintf("transaction_id mismatch at generation %d", gen))
	}
	return nil
}

// Validate checks (gen, transactionID) against the stored log.
func (r *Replica) Validate(gen int, transactionID string) error {
	return r.store.View(func(tx store.Tx) error {
		return validateLog(tx, gen, transactionID)
	})
}

// changesSince scans the log for every entry with generation > gen,
// keeping only the highest entry per doc_id, and returns them ordered
// by that generation ascending, along with the (generation,
// transaction_id) of the overall log head (or the highest emitted
// entry if the head predates gen... in practice the head is always
// >= any emitted entry's generation).
func changesSince(tx store.Tx, gen int) ([]types.Change, int, string, error) {
	b, err := tx.Bucket(bucketLog)
	if err != nil {
		return nil, 0, "", err
	}

	latest := make(map[types.DocID]types.Change)
	c := b.Cursor()
	for k, v := c.Seek(genKey(gen + 1)); k != nil; k, v = c.Next() {
		g := genFromKey(k)
		var lv logValue
		if err := json.Unmarshal(v, &lv); err != nil {
			return nil, 0, "", fmt.Errorf("replica: corrupt log entry at generation %d: %w", g, err)
		}
		latest[lv.DocID] = types.Change{DocID: lv.DocID, Generation: g, TransactionID: lv.TransactionID}
	}

	changes := make([]types.Change, 0, len(latest))
	for _, ch := range latest {
		changes = append(changes, ch)
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Generation < changes[j].Generation
	})

	headGen, headTrans, err := currentGeneration(tx)
	if err != nil {
		return nil, 0, "", err
	}
	if len(changes) == 0 {
		// No changes since gen; the head is whatever it already was.
		return changes, headGen, headTrans, nil
	}
	return changes, headGen, headTrans, nil
}

// ChangesSince returns every doc_id with any log entry of generation
// greater than gen, each represented once at its highest such
// generation, ordered by generation ascending, along with the log's
// current (generation, transaction_id) head.
func (r *Replica) ChangesSince(gen int) ([]types.Change, int, string, error) {
	var (
		changes   []types.Change
		headGen   int
		headTrans string
	)
	err := r.store.View(func(tx store.Tx) error {
		c, g, t, err := changesSince(tx, gen)
		changes, headGen, headTrans = c, g, t
		return err
	})
	return changes, headGen, headTrans, err
}
