package synchttp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/replica"
	"github.com/cuemby/burrow/pkg/sync"
	"github.com/cuemby/burrow/pkg/types"
)

// Handler serves the §6.4 sync wire protocol against a local replica.
type Handler struct {
	db     *replica.Replica
	target *sync.Local
	mux    *http.ServeMux
}

// NewHandler builds an http.Handler that exposes db as a remote sync
// target.
func NewHandler(db *replica.Replica) *Handler {
	h := &Handler{db: db, target: sync.NewLocal(db)}
	h.mux = http.NewServeMux()
	h.mux.HandleFunc("/sync-info", h.handleSyncInfo)
	h.mux.HandleFunc("/sync-exchange", h.handleSyncExchange)
	h.mux.HandleFunc("/record-sync-info", h.handleRecordSyncInfo)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)

	status := "ok"
	if rec.status >= 400 {
		status = "error"
	}
	metrics.HTTPSyncRequestsTotal.WithLabelValues(status).Inc()
	metrics.HTTPSyncRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) handleSyncInfo(w http.ResponseWriter, r *http.Request) {
	sourceUID := r.URL.Query().Get("source_uid")
	if sourceUID == "" {
		writeError(w, http.StatusBadRequest, types.NewError(types.CodeInvalidParameter, "source_uid is required"))
		return
	}

	targetUID, targetGen, sourceGenKnown, sourceTransKnown, err := h.target.GetSyncInfo(sourceUID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, syncInfoResponse{
		TargetUID:                targetUID,
		TargetGeneration:         targetGen,
		SourceGenKnownByTarget:   sourceGenKnown,
		SourceTransKnownByTarget: sourceTransKnown,
	})
}

func (h *Handler) handleSyncExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, types.NewError(types.CodeInvalidParameter, "POST required"))
		return
	}

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, types.Wrap(types.CodeBrokenSyncStream, "malformed request body", err))
		return
	}

	docs, err := decodeDocs(req.Docs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	newGen, newTrans, returned, err := h.target.SyncExchange(req.SourceUID, docs, req.TargetGenKnownBySource, req.TargetTransKnownBySource, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	wireReturned, err := encodeDocs(returned)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, exchangeResponse{
		NewGeneration:    newGen,
		NewTransactionID: newTrans,
		Docs:             wireReturned,
	})
}

func (h *Handler) handleRecordSyncInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, types.NewError(types.CodeInvalidParameter, "POST required"))
		return
	}

	var req recordSyncInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, types.Wrap(types.CodeBrokenSyncStream, "malformed request body", err))
		return
	}

	if err := h.target.RecordSyncInfo(req.SourceUID, req.SourceGen, req.SourceTransID, nil); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("synchttp: encode response failed")
	}
}

type errorResponse struct {
	Code    types.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Code: types.CodeOf(err), Message: err.Error()})
}
