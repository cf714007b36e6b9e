// Package service wires the analysis engine, the rolling window and the
// session store into the operations exposed by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/underdog/internal/adapters/repository"
	"github.com/okian/underdog/internal/domain/analysis"
	"github.com/okian/underdog/internal/domain/dedupe"
	"github.com/okian/underdog/internal/domain/model"
	"github.com/okian/underdog/internal/domain/types"
	"github.com/okian/underdog/internal/domain/window"
	"github.com/okian/underdog/pkg/logger"
	"github.com/okian/underdog/pkg/metrics"
)

// Metric sources.
const (
	SourceAPI     = "api"
	SourceSession = "session"
	SourceCLI     = "cli"
)

// Service implements the API dependencies for the analysis engine.
type Service struct {
	mu sync.RWMutex
	// playMu serializes read-modify-write of sessions.
	playMu sync.Mutex

	// Core components
	roster   model.Roster
	analyzer *analysis.Analyzer
	store    repository.Store
	deduper  dedupe.Deduper

	// Configuration
	recentSize int
	windowSize int
	dedupeSize int
	source     string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRoster sets the competitor roster.
func WithRoster(roster model.Roster) Option {
	return func(s *Service) {
		if roster.Len() > 0 {
			s.roster = roster
		}
	}
}

// WithWindowSizes sets the recent-history length and the aggregate window
// length that entered counts must sum to.
func WithWindowSizes(recent, aggregate int) Option {
	return func(s *Service) {
		if recent > 0 {
			s.recentSize = recent
		}
		if aggregate > 0 {
			s.windowSize = aggregate
		}
	}
}

// WithAnalyzer sets the analyzer used for every report.
func WithAnalyzer(a *analysis.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithStore sets the session store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDedupeSize sets the size of the round ID cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSource sets the metrics label for one-shot analyses.
func WithSource(source string) Option {
	return func(s *Service) {
		if source != "" {
			s.source = source
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		roster:     model.DefaultRoster(),
		analyzer:   analysis.NewAnalyzer(),
		recentSize: window.DefaultRecentSize,
		windowSize: window.DefaultWindowSize,
		dedupeSize: 50000,
		source:     SourceAPI,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory session store")
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Strings("roster", s.roster.Names()),
		logger.Int("recentSize", s.recentSize),
		logger.Int("windowSize", s.windowSize),
		logger.Int("recencyDepth", s.analyzer.RecencyDepth()),
		logger.Int("streakThreshold", s.analyzer.StreakThreshold()),
		logger.Int("lowWinThreshold", s.analyzer.LowWinThreshold()),
	)

	return nil
}

// Stop shuts down the service and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing session store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "analysis service stopped")
}

// Roster returns the configured roster.
func (s *Service) Roster() model.Roster { return s.roster }

// RecentSize returns the required recent-history length.
func (s *Service) RecentSize() int { return s.recentSize }

// WindowSize returns the aggregate window length.
func (s *Service) WindowSize() int { return s.windowSize }

// Analyzer returns the configured analyzer.
func (s *Service) Analyzer() *analysis.Analyzer { return s.analyzer }

// Analyze validates the inputs and runs one analysis. The engine is never
// invoked on invalid input.
func (s *Service) Analyze(ctx context.Context, recent []model.Competitor, counts map[model.Competitor]int) (types.Report, error) {
	state, err := s.buildState(ctx, recent, counts)
	if err != nil {
		return types.Report{}, err
	}
	return s.report(ctx, s.source, state), nil
}

// CreateSession validates the inputs and stores a new rolling window.
func (s *Service) CreateSession(ctx context.Context, recent []model.Competitor, counts map[model.Competitor]int) (types.SessionView, error) {
	store, err := s.sessions()
	if err != nil {
		return types.SessionView{}, err
	}
	state, err := s.buildState(ctx, recent, counts)
	if err != nil {
		return types.SessionView{}, err
	}

	sess, err := store.Create(ctx, state)
	if err != nil {
		return types.SessionView{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info(ctx, "session created", logger.String("session", sess.ID))
	return s.view(ctx, sess), nil
}

// Session returns the current report for a stored session.
func (s *Service) Session(ctx context.Context, id string) (types.SessionView, error) {
	store, err := s.sessions()
	if err != nil {
		return types.SessionView{}, err
	}
	sess, err := s.load(ctx, store, id)
	if err != nil {
		return types.SessionView{}, err
	}
	return s.view(ctx, sess), nil
}

// PlayRound records winner in the session's rolling window and returns the
// refreshed report. A non-empty roundID makes the call idempotent: a repeat
// returns the current report with duplicate set and changes nothing.
func (s *Service) PlayRound(ctx context.Context, id string, winner model.Competitor, roundID string) (view types.SessionView, duplicate bool, err error) {
	store, err := s.sessions()
	if err != nil {
		return types.SessionView{}, false, err
	}

	s.playMu.Lock()
	defer s.playMu.Unlock()

	sess, err := s.load(ctx, store, id)
	if err != nil {
		return types.SessionView{}, false, err
	}

	key := ""
	if roundID != "" {
		key = dedupe.Key(id, roundID)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordRoundDuplicate()
			s.logger.Debug(ctx, "duplicate round skipped",
				logger.String("session", id),
				logger.String("round", roundID),
			)
			return s.view(ctx, sess), true, nil
		}
	}

	next, err := sess.State.PushChecked(s.roster, winner)
	if err != nil {
		s.forgetRound(ctx, key)
		s.recordValidationFailure(ctx, err)
		return types.SessionView{}, false, err
	}
	sess.State = next
	sess.Rounds++

	sess, err = store.Save(ctx, sess)
	if err != nil {
		s.forgetRound(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			return types.SessionView{}, false, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
		}
		return types.SessionView{}, false, fmt.Errorf("save session: %w", err)
	}

	metrics.RecordRoundPlayed()
	s.logger.Debug(ctx, "round played",
		logger.String("session", id),
		logger.String("winner", string(winner)),
		logger.Int("rounds", sess.Rounds),
	)
	return s.view(ctx, sess), false, nil
}

// DeleteSession removes a session and its remembered round IDs.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	store, err := s.sessions()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
		}
		return fmt.Errorf("delete session: %w", err)
	}
	s.deduper.Forget(ctx, dedupe.Key(id, ""))
	s.logger.Info(ctx, "session deleted", logger.String("session", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"roster":          s.roster.Names(),
		"recentSize":      s.recentSize,
		"windowSize":      s.windowSize,
		"recencyDepth":    s.analyzer.RecencyDepth(),
		"streakThreshold": s.analyzer.StreakThreshold(),
		"lowWinThreshold": s.analyzer.LowWinThreshold(),
		"dedupeSize":      s.dedupeSize,
	}

	if s.started {
		sessions := s.store.Count(context.Background())
		stats["sessions"] = sessions
		stats["rememberedRounds"] = s.deduper.Size()
		metrics.UpdateActiveSessions(sessions)
	}

	return stats
}

func (s *Service) sessions() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

func (s *Service) load(ctx context.Context, store repository.Store, id string) (repository.Session, error) {
	sess, err := store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Session{}, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	if err != nil {
		return repository.Session{}, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func (s *Service) buildState(ctx context.Context, recent []model.Competitor, counts map[model.Competitor]int) (window.State, error) {
	state, err := window.FromCounts(s.roster, recent, counts, s.recentSize, s.windowSize)
	if err != nil {
		s.recordValidationFailure(ctx, err)
		return window.State{}, err
	}
	return state, nil
}

func (s *Service) recordValidationFailure(ctx context.Context, err error) {
	kind := model.ValidationKind(err)
	if kind == "" {
		return
	}
	metrics.RecordValidationFailure(kind)
	s.log().Debug(ctx, "input rejected", logger.String("kind", kind), logger.Error(err))
}

func (s *Service) forgetRound(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Unrecord(ctx, key)
	}
}

func (s *Service) view(ctx context.Context, sess repository.Session) types.SessionView {
	return types.SessionView{
		ID:        sess.ID,
		Rounds:    sess.Rounds,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		Report:    s.report(ctx, SourceSession, sess.State),
	}
}

func (s *Service) report(ctx context.Context, source string, state window.State) types.Report {
	recent := state.Recent()
	dist := state.Distribution(s.roster)
	rep := types.Report{
		Roster:       s.roster.Members(),
		Recent:       recent,
		Distribution: dist,
		Result:       s.analyzer.Analyze(s.roster, recent, dist),
		LowWins:      s.analyzer.LowWins(s.roster, dist),
	}

	metrics.RecordAnalysis(source, len(rep.Result.Recommendation), rep.ReasonKinds())
	s.log().Debug(ctx, "analysis complete",
		logger.String("source", source),
		logger.Int("recommended", len(rep.Result.Recommendation)),
		logger.Int("excluded", len(rep.Result.Exclusions)),
	)
	return rep
}

// log falls back to the global logger for calls made before Start.
func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get()
}
