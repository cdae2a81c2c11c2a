package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/waste-to-wealth/server/internal/agent/model"
	errx "github.com/waste-to-wealth/server/internal/core/error"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

const dateLayout = "2006-01-02"

type analyzeRequest struct {
	Query string `json:"query"`
}

type usageResponse struct {
	Date   string               `json:"date"`
	Models []model.UsageSummary `json:"models"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		logx.Ctx(ctx).Debug().Err(err).Msg("invalid analyze body")
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, errx.New(err, http.StatusRequestEntityTooLarge, "request body too large"))
			return
		}
		writeError(w, errx.BadRequest("request body must be JSON with a query field"))
		return
	}
	if req.Query == "" {
		writeError(w, errx.BadRequest("query is required"))
		return
	}

	out, err := s.runner.Run(ctx, model.QueryInput{
		RequestID: RequestIDFrom(ctx),
		Query:     req.Query,
	})
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Msg("analyze failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeError(w, errx.New(nil, http.StatusServiceUnavailable, "usage ledger is not configured"))
		return
	}
	day := s.now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, errx.BadRequest("date must be YYYY-MM-DD"))
			return
		}
		day = d
	}

	sums, err := s.ledger.Daily(r.Context(), day)
	if err != nil {
		logx.Ctx(r.Context()).Error().Err(err).Msg("usage lookup failed")
		writeError(w, err)
		return
	}
	if sums == nil {
		sums = []model.UsageSummary{}
	}
	writeJSON(w, http.StatusOK, usageResponse{Date: day.Format(dateLayout), Models: sums})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errx.StatusOf(err), errorResponse{Error: errx.PublicMessage(err)})
}
