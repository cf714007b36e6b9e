package model

import (
	"fmt"
	"strings"
)

// ReasonKind classifies why a competitor was excluded.
type ReasonKind string

// Reason kinds, in the order they are evaluated.
const (
	ReasonRecent ReasonKind = "recent"
	ReasonStreak ReasonKind = "streak"
	ReasonTop    ReasonKind = "top"
)

// Reason is a single exclusion tag. Streak is set only for ReasonStreak.
type Reason struct {
	Kind   ReasonKind
	Streak int
}

// String renders the human-readable tag.
func (r Reason) String() string {
	switch r.Kind {
	case ReasonRecent:
		return "recently won"
	case ReasonStreak:
		return fmt.Sprintf("on a winning streak of %d", r.Streak)
	case ReasonTop:
		return "wins the most"
	default:
		return string(r.Kind)
	}
}

// Exclusion pairs an excluded competitor with its ordered reasons.
type Exclusion struct {
	Competitor Competitor
	Reasons    []Reason
}

// Text joins the reason tags with ", ".
func (e Exclusion) Text() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// Result is the outcome of one analysis. Recommendation and Exclusions are
// both in roster order and together partition the roster.
type Result struct {
	Recommendation []Competitor
	Exclusions     []Exclusion
}

// AllExcluded reports the degenerate case where nobody is recommended.
func (r Result) AllExcluded() bool {
	return len(r.Recommendation) == 0
}

// ReasonsFor returns the reasons c was excluded, if it was.
func (r Result) ReasonsFor(c Competitor) ([]Reason, bool) {
	for _, e := range r.Exclusions {
		if e.Competitor == c {
			return e.Reasons, true
		}
	}
	return nil, false
}

// Reasons returns the exclusion reasons keyed by competitor.
func (r Result) Reasons() map[Competitor][]Reason {
	out := make(map[Competitor][]Reason, len(r.Exclusions))
	for _, e := range r.Exclusions {
		out[e.Competitor] = e.Reasons
	}
	return out
}

// LowWin is a competitor whose count in the aggregate window is below the
// reporting threshold.
type LowWin struct {
	Competitor Competitor
	Count      int
}
