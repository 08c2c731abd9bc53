package synchttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cuemby/burrow/pkg/sync"
	"github.com/cuemby/burrow/pkg/types"
)

// Client implements sync.Target against a remote Handler reached over
// HTTP. It holds no replica state of its own; every call is a single
// request/response round trip.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client that talks to the Handler mounted at
// baseURL (e.g. "http://peer.example:7777").
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

func (c *Client) ReplicaUID() (string, error) {
	// /sync-info always reports the target's own replica_uid
	// regardless of the source_uid queried with, so any placeholder
	// value resolves it.
	targetUID, _, _, _, err := c.GetSyncInfo("-")
	if err != nil {
		return "", err
	}
	return targetUID, nil
}

func (c *Client) GetSyncInfo(sourceUID string) (targetUID string, targetGen int, sourceGenKnownByTarget int, sourceTransKnownByTarget string, err error) {
	u := fmt.Sprintf("%s/sync-info?source_uid=%s", c.baseURL, url.QueryEscape(sourceUID))
	resp, err := c.http.Get(u)
	if err != nil {
		return "", 0, 0, "", types.Wrap(types.CodeBrokenSyncStream, "sync-info request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, 0, "", decodeError(resp)
	}

	var body syncInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, 0, "", types.Wrap(types.CodeInvalidHTTPResponse, "malformed sync-info response", err)
	}
	return body.TargetUID, body.TargetGeneration, body.SourceGenKnownByTarget, body.SourceTransKnownByTarget, nil
}

// RecordSyncInfo upserts the remote's watermark for sourceUID. trace
// is a local test-injection hook (§5) with no meaning across an HTTP
// boundary, so it is accepted to satisfy sync.Target and ignored.
func (c *Client) RecordSyncInfo(sourceUID string, sourceGen int, sourceTransID string, trace sync.TraceFunc) error {
	payload, err := json.Marshal(recordSyncInfoRequest{
		SourceUID:     sourceUID,
		SourceGen:     sourceGen,
		SourceTransID: sourceTransID,
	})
	if err != nil {
		return types.Wrap(types.CodeInternal, "encode record-sync-info request", err)
	}

	resp, err := c.http.Post(c.baseURL+"/record-sync-info", "application/json", bytes.NewReader(payload))
	if err != nil {
		return types.Wrap(types.CodeBrokenSyncStream, "record-sync-info request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) SyncExchange(sourceUID string, docs []sync.ExchangeDoc, targetGenKnownBySource int, targetTransKnownBySource string, trace sync.TraceFunc) (int, string, []sync.ExchangeDoc, error) {
	wireOut, err := encodeDocs(docs)
	if err != nil {
		return 0, "", nil, err
	}

	payload, err := json.Marshal(exchangeRequest{
		SourceUID:                sourceUID,
		TargetGenKnownBySource:   targetGenKnownBySource,
		TargetTransKnownBySource: targetTransKnownBySource,
		Docs:                     wireOut,
	})
	if err != nil {
		return 0, "", nil, types.Wrap(types.CodeInternal, "encode sync-exchange request", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, c.baseURL+"/sync-exchange", bytes.NewReader(payload))
	if err != nil {
		return 0, "", nil, types.Wrap(types.CodeInternal, "build sync-exchange request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", nil, types.Wrap(types.CodeBrokenSyncStream, "sync-exchange request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, "", nil, decodeError(resp)
	}

	var body exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, "", nil, types.Wrap(types.CodeInvalidHTTPResponse, "malformed sync-exchange response", err)
	}

	returned, err := decodeDocs(body.Docs)
	if err != nil {
		return 0, "", nil, err
	}
	return body.NewGeneration, body.NewTransactionID, returned, nil
}

func decodeError(resp *http.Response) error {
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		return types.NewError(types.CodeInvalidHTTPResponse, fmt.Sprintf("remote returned HTTP %d", resp.StatusCode))
	}
	code := body.Code
	if code == "" {
		code = types.CodeInvalidHTTPResponse
	}
	return types.NewError(code, body.Message)
}
