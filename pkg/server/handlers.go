package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/engine"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/server/middleware"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/logging"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// JobResponse is the body of GET /v1/images/jobs/{requestId}.
type JobResponse struct {
	Job    *audit.JobRecord     `json:"job"`
	Events []*audit.EventRecord `json:"events"`
}

// handleGenerate serves POST /v1/images/generate. Any well-formed request
// gets a 200 with a GenerationResult, including fallbacks; the caller
// reads ok, fallback and error from the body.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	ctx := logging.WithConsumerApp(r.Context(), string(req.ConsumerApp))
	res := s.Engine().Generate(ctx, req)
	outcome := engine.OutcomeGenerated
	if !res.OK {
		outcome = res.Fallback.Reason
	}
	middleware.Annotate(r.Context(), req.RequestID, outcome)
	writeJSON(w, http.StatusOK, res)
}

// handleDecide serves POST /v1/images/decide.
func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	middleware.Annotate(r.Context(), req.RequestID, "")
	writeJSON(w, http.StatusOK, s.Engine().Decide(req))
}

// handleJob serves GET /v1/images/jobs/{requestId}.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	if s.opts.Jobs == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, middleware.CodeUnavailable,
			"audit store is not configured")
		return
	}

	id := r.PathValue("requestId")
	middleware.Annotate(r.Context(), id, "")
	job, err := s.opts.Jobs.GetJob(r.Context(), id)
	if errors.Is(err, audit.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, middleware.CodeNotFound, "no job for request id")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "job lookup failed", "request_id", id, "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.CodeInternalError, "job lookup failed")
		return
	}

	events, err := s.opts.Jobs.ListEvents(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "event lookup failed", "request_id", id, "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.CodeInternalError, "event lookup failed")
		return
	}
	if events == nil {
		events = []*audit.EventRecord{}
	}
	writeJSON(w, http.StatusOK, JobResponse{Job: job, Events: events})
}

// decodeRequest reads an image request body. It writes the error response
// itself and reports false when the body is unusable.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*types.Request, bool) {
	var req types.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, middleware.CodeBodyTooLarge,
				"request body exceeds the configured limit")
			return nil, false
		}
		middleware.WriteError(w, http.StatusBadRequest, middleware.CodeInvalidRequest,
			"request body is not a valid image request")
		return nil, false
	}
	return &req, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
