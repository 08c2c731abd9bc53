package synchttp

import (
	"encoding/json"

	"github.com/cuemby/burrow/pkg/sync"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/vclock"
)

// wireDoc is one document as it appears on the wire (§6.4): {doc_id,
// rev, body | null, gen, trans_id}. Body is json.RawMessage rather
// than []byte so it round-trips as a real JSON value (an object, or
// the literal null for a tombstone) instead of the base64 string
// encoding/json produces for a plain []byte field.
type wireDoc struct {
	DocID         string          `json:"doc_id"`
	Rev           string          `json:"rev"`
	Body          json.RawMessage `json:"body"`
	Generation    int             `json:"gen"`
	TransactionID string          `json:"trans_id"`
}

func toWireDoc(d sync.ExchangeDoc) (wireDoc, error) {
	return wireDoc{
		DocID:         string(d.Doc.DocID),
		Rev:           d.Doc.Revision.String(),
		Body:          json.RawMessage(d.Doc.Body),
		Generation:    d.Generation,
		TransactionID: d.TransactionID,
	}, nil
}

func fromWireDoc(w wireDoc) (sync.ExchangeDoc, error) {
	clock, err := vclock.Parse(w.Rev)
	if err != nil {
		return sync.ExchangeDoc{}, types.Wrap(types.CodeBrokenSyncStream, "malformed revision on wire", err)
	}
	return sync.ExchangeDoc{
		Doc: types.Document{
			DocID:    types.DocID(w.DocID),
			Revision: clock,
			Body:     []byte(w.Body),
		},
		Generation:    w.Generation,
		TransactionID: w.TransactionID,
	}, nil
}

// syncInfoResponse is the response body of GET /sync-info.
type syncInfoResponse struct {
	TargetUID                string `json:"target_uid"`
	TargetGeneration         int    `json:"target_generation"`
	SourceGenKnownByTarget   int    `json:"source_generation_known_by_target"`
	SourceTransKnownByTarget string `json:"source_transaction_known_by_target"`
}

// exchangeRequest is the request body of POST /sync-exchange.
type exchangeRequest struct {
	SourceUID                string    `json:"source_uid"`
	TargetGenKnownBySource   int       `json:"target_generation_known_by_source"`
	TargetTransKnownBySource string    `json:"target_transaction_known_by_source"`
	Docs                     []wireDoc `json:"docs"`
}

// exchangeResponse is the response body of POST /sync-exchange:
// {header {new_generation, new_transaction_id}, stream of documents}.
type exchangeResponse struct {
	NewGeneration    int       `json:"new_generation"`
	NewTransactionID string    `json:"new_transaction_id"`
	Docs             []wireDoc `json:"docs"`
}

// recordSyncInfoRequest is the request body of POST /record-sync-info.
type recordSyncInfoRequest struct {
	SourceUID     string `json:"source_uid"`
	SourceGen     int    `json:"source_generation"`
	SourceTransID string `json:"source_transaction_id"`
}

func encodeDocs(docs []sync.ExchangeDoc) ([]wireDoc, error) {
	out := make([]wireDoc, 0, len(docs))
	for _, d := range docs {
		w, err := toWireDoc(d)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func decodeDocs(docs []wireDoc) ([]sync.ExchangeDoc, error) {
	out := make([]sync.ExchangeDoc, 0, len(docs))
	for _, w := range docs {
		d, err := fromWireDoc(w)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
