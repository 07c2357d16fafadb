// Package server exposes the HTTP API: best-exit queries, health, status
// and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"sniper-sim/internal/analysis"
	"sniper-sim/internal/domain"
	"sniper-sim/internal/observability"
)

// BestExitService answers retrospective best-exit queries.
type BestExitService interface {
	BestExit(ctx context.Context, mint string, boughtAt time.Time, buyPrice float64) (domain.BestExitResult, error)
}

// Status is the snapshot served by /status.
type Status struct {
	Status      string     `json:"status"`
	Uptime      string     `json:"uptime"`
	StartedAt   time.Time  `json:"started_at"`
	LastPassAt  *time.Time `json:"last_pass_at,omitempty"`
	PassesRun   int        `json:"passes_run"`
	PassRunning bool       `json:"pass_running"`
}

// Server serves the HTTP API.
type Server struct {
	svc    BestExitService
	status func() Status
	log    zerolog.Logger
}

// New creates a Server. The status function may be nil, which serves a
// minimal running status.
func New(svc BestExitService, status func() Status, log zerolog.Logger) *Server {
	if status == nil {
		started := time.Now().UTC()
		status = func() Status {
			return Status{
				Status:    "running",
				Uptime:    time.Since(started).String(),
				StartedAt: started,
			}
		}
	}
	return &Server{svc: svc, status: status, log: log}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/best-exit", s.handleBestExit)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", observability.Handler())
	return mux
}

// bestExitResponse is the JSON envelope for /api/best-exit. Null best
// fields mean no exit could be determined; the query still succeeds.
type bestExitResponse struct {
	Mint              string     `json:"mint"`
	BestSellAt        *time.Time `json:"bestSellAt"`
	BestSellPrice     *float64   `json:"bestSellPrice"`
	BestReturnPercent *float64   `json:"bestReturnPercent"`
	Warning           string     `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleBestExit answers GET /api/best-exit?mint=...&boughtAt=...&buyPrice=...
// Missing parameters and a non-finite buyPrice are client errors. Anything
// upstream degrades to an absent result with a warning instead of a 5xx.
func (s *Server) handleBestExit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	q := r.URL.Query()
	mint := q.Get("mint")
	boughtAtRaw := q.Get("boughtAt")
	buyPriceRaw := q.Get("buyPrice")
	if mint == "" || boughtAtRaw == "" || buyPriceRaw == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "mint, boughtAt and buyPrice are required"})
		return
	}

	buyPrice, err := strconv.ParseFloat(buyPriceRaw, 64)
	if err != nil || math.IsNaN(buyPrice) || math.IsInf(buyPrice, 0) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "buyPrice must be a finite number"})
		return
	}

	// An unparseable boughtAt maps to the zero time, which the service
	// answers with an absent result. The parameter was present, so it is
	// not a client error.
	boughtAt := analysis.ParseBoughtAt(boughtAtRaw)

	resp := bestExitResponse{Mint: mint}
	result, err := s.svc.BestExit(r.Context(), mint, boughtAt, buyPrice)
	if err != nil {
		s.log.Warn().Err(err).Str("mint", mint).Msg("best exit query degraded")
		resp.Warning = "market data unavailable: " + err.Error()
	} else {
		resp.BestSellAt = result.BestSellAt
		resp.BestSellPrice = result.BestSellPrice
		resp.BestReturnPercent = result.BestReturnPercent
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
