// Package window holds the caller-owned rolling state used to play contests
// forward: a fixed-length recent history and a fixed-length aggregate window.
//
// The analysis engine never sees a State; callers derive its inputs from one
// with Recent and Distribution, and advance it with Push.
package window

import (
	"fmt"

	"github.com/okian/underdog/internal/domain/analysis"
	"github.com/okian/underdog/internal/domain/model"
)

// Default buffer lengths.
const (
	DefaultRecentSize = 10
	DefaultWindowSize = 100
)

// State is the rolling window. Both buffers are ordered oldest first.
type State struct {
	recent    []model.Competitor
	aggregate []model.Competitor
}

// New creates a State from copies of the given buffers.
func New(recent, aggregate []model.Competitor) State {
	return State{
		recent:    clone(recent),
		aggregate: clone(aggregate),
	}
}

// Expand turns per-competitor counts into a flat occurrence list, grouping
// each competitor's wins together in roster order. Competitors missing from
// counts contribute nothing.
func Expand(roster model.Roster, counts map[model.Competitor]int) []model.Competitor {
	total := 0
	for _, n := range counts {
		if n > 0 {
			total += n
		}
	}
	out := make([]model.Competitor, 0, total)
	for _, c := range roster.Members() {
		for i := 0; i < counts[c]; i++ {
			out = append(out, c)
		}
	}
	return out
}

// FromCounts validates user-entered inputs and builds the initial State.
// recent must have recentSize roster members and counts must sum to
// windowSize.
func FromCounts(roster model.Roster, recent []model.Competitor, counts map[model.Competitor]int, recentSize, windowSize int) (State, error) {
	if err := model.ValidateHistory(roster, recent, recentSize); err != nil {
		return State{}, err
	}
	if err := model.ValidateCounts(roster, counts, windowSize); err != nil {
		return State{}, err
	}
	return New(recent, Expand(roster, counts)), nil
}

// Recent returns a copy of the recent-history buffer.
func (s State) Recent() []model.Competitor { return clone(s.recent) }

// Aggregate returns a copy of the aggregate-window buffer.
func (s State) Aggregate() []model.Competitor { return clone(s.aggregate) }

// Distribution aggregates the window over roster, with every roster member
// present as a key.
func (s State) Distribution(roster model.Roster) model.Distribution {
	return analysis.AggregateOver(roster, s.aggregate)
}

// Push records a new winner: the oldest entry of each buffer is dropped and
// winner appended, keeping both lengths constant. Empty buffers simply grow
// by one. The receiver is left untouched.
func (s State) Push(winner model.Competitor) State {
	return State{
		recent:    shift(s.recent, winner),
		aggregate: shift(s.aggregate, winner),
	}
}

// PushChecked is Push guarded by a roster membership check.
func (s State) PushChecked(roster model.Roster, winner model.Competitor) (State, error) {
	if !roster.Contains(winner) {
		return s, fmt.Errorf("%w: %q", model.ErrUnknownCompetitor, winner)
	}
	return s.Push(winner), nil
}

func shift(buf []model.Competitor, next model.Competitor) []model.Competitor {
	if len(buf) == 0 {
		return []model.Competitor{next}
	}
	out := make([]model.Competitor, len(buf))
	copy(out, buf[1:])
	out[len(out)-1] = next
	return out
}

func clone(buf []model.Competitor) []model.Competitor {
	out := make([]model.Competitor, len(buf))
	copy(out, buf)
	return out
}
