package analysis

import (
	"github.com/okian/underdog/internal/domain/model"
)

// Default heuristic parameters.
const (
	DefaultRecencyDepth    = 3
	DefaultStreakThreshold = 2
	DefaultLowWinThreshold = 5
)

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithRecencyDepth sets how many trailing history entries count as recent.
func WithRecencyDepth(k int) Option {
	return func(a *Analyzer) {
		if k > 0 {
			a.recencyDepth = k
		}
	}
}

// WithStreakThreshold sets the minimum run length flagged as a streak.
func WithStreakThreshold(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.streakThreshold = n
		}
	}
}

// WithLowWinThreshold sets the count below which a competitor is listed by
// LowWins.
func WithLowWinThreshold(n int) Option {
	return func(a *Analyzer) {
		if n >= 0 {
			a.lowWinThreshold = n
		}
	}
}

// Analyzer composes the detectors into an exclude/include decision.
// It holds only immutable parameters and is safe for concurrent use.
type Analyzer struct {
	recencyDepth    int
	streakThreshold int
	lowWinThreshold int
}

// NewAnalyzer creates an Analyzer with the default parameters overridden by
// opts.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		recencyDepth:    DefaultRecencyDepth,
		streakThreshold: DefaultStreakThreshold,
		lowWinThreshold: DefaultLowWinThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RecencyDepth returns the configured recency window.
func (a *Analyzer) RecencyDepth() int { return a.recencyDepth }

// StreakThreshold returns the configured streak threshold.
func (a *Analyzer) StreakThreshold() int { return a.streakThreshold }

// LowWinThreshold returns the configured low-win threshold.
func (a *Analyzer) LowWinThreshold() int { return a.lowWinThreshold }

// Analyze evaluates every roster member, in roster order. A member is
// excluded when it won recently, holds a streak of at least the threshold
// anywhere in recent, or is tied for the most wins in dist. Everyone else is
// recommended. Recommendation and Exclusions partition the roster; both may
// be empty.
func (a *Analyzer) Analyze(roster model.Roster, recent []model.Competitor, dist model.Distribution) model.Result {
	chains := ChainLengths(recent)
	recentSet := Recent(recent, a.recencyDepth)
	top := TopWinners(dist)

	res := model.Result{
		Recommendation: make([]model.Competitor, 0, roster.Len()),
	}
	for _, c := range roster.Members() {
		var reasons []model.Reason
		if recentSet.Has(c) {
			reasons = append(reasons, model.Reason{Kind: model.ReasonRecent})
		}
		if n := chains.Get(c); n >= a.streakThreshold {
			reasons = append(reasons, model.Reason{Kind: model.ReasonStreak, Streak: n})
		}
		if top.Has(c) {
			reasons = append(reasons, model.Reason{Kind: model.ReasonTop})
		}

		if len(reasons) > 0 {
			res.Exclusions = append(res.Exclusions, model.Exclusion{Competitor: c, Reasons: reasons})
			continue
		}
		res.Recommendation = append(res.Recommendation, c)
	}
	return res
}

// LowWins lists roster members whose count in dist is below the low-win
// threshold, in roster order.
func (a *Analyzer) LowWins(roster model.Roster, dist model.Distribution) []model.LowWin {
	var out []model.LowWin
	for _, c := range roster.Members() {
		if n := dist.Get(c); n < a.lowWinThreshold {
			out = append(out, model.LowWin{Competitor: c, Count: n})
		}
	}
	return out
}

var defaultAnalyzer = NewAnalyzer()

// Analyze runs the default Analyzer.
func Analyze(roster model.Roster, recent []model.Competitor, dist model.Distribution) model.Result {
	return defaultAnalyzer.Analyze(roster, recent, dist)
}
