// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/underdog/internal/domain/analysis"
	"github.com/okian/underdog/internal/domain/model"
	"github.com/okian/underdog/internal/domain/types"
	"golang.org/x/time/rate"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RosterDependencies
	AnalyzeDependencies
	SessionDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	rosterHandler   *RosterHandler
	analyzeHandler  *AnalyzeHandler
	sessionsHandler *SessionsHandler

	limiter *rate.Limiter
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRateLimit installs a token bucket shared by the business endpoints.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		rosterHandler:   NewRosterHandler(deps),
		analyzeHandler:  NewAnalyzeHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/roster", s.wrap(s.rosterHandler.HandleGetRoster, "roster"))
	mux.HandleFunc("/analyze", s.wrap(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/sessions", s.wrap(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("/sessions/", s.wrap(s.sessionsHandler.HandleSession, "session"))
}

func (s *Server) wrap(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return MetricsMiddleware(RateLimitMiddleware(next, endpoint, s.limiter), endpoint)
}

// RosterDependencies exposes the configured roster and engine parameters.
type RosterDependencies interface {
	Roster() model.Roster
	RecentSize() int
	WindowSize() int
	Analyzer() *analysis.Analyzer
}

// AnalyzeDependencies runs one-shot analyses.
type AnalyzeDependencies interface {
	Analyze(ctx context.Context, recent []model.Competitor, counts map[model.Competitor]int) (types.Report, error)
}

// SessionDependencies manages stored rolling windows.
type SessionDependencies interface {
	CreateSession(ctx context.Context, recent []model.Competitor, counts map[model.Competitor]int) (types.SessionView, error)
	Session(ctx context.Context, id string) (types.SessionView, error)
	PlayRound(ctx context.Context, id string, winner model.Competitor, roundID string) (types.SessionView, bool, error)
	DeleteSession(ctx context.Context, id string) error
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps validation failures to 400, unknown sessions to 404
// and everything else to 500.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	if kind := model.ValidationKind(err); kind != "" {
		writeError(w, http.StatusBadRequest, kind, WrapKind(op, ErrBadRequest, err))
		return
	}
	if errors.Is(err, model.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
