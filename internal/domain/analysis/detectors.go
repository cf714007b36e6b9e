// Package analysis implements the exclusion heuristic: streak, recency and
// top-winner detection over a recent history and a win distribution, and the
// composition of those signals into a recommendation.
//
// Everything here is pure and deterministic; no function retains its inputs.
package analysis

import (
	"github.com/okian/underdog/internal/domain/model"
)

// Set is an unordered set of competitors.
type Set map[model.Competitor]struct{}

// Has reports whether c is in the set.
func (s Set) Has(c model.Competitor) bool {
	_, ok := s[c]
	return ok
}

// InRosterOrder returns the members of s that belong to roster, ordered as
// in the roster.
func (s Set) InRosterOrder(roster model.Roster) []model.Competitor {
	out := make([]model.Competitor, 0, len(s))
	for _, c := range roster.Members() {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// ChainMap maps competitors to their longest run length.
type ChainMap map[model.Competitor]int

// Get returns the longest run for c. Competitors that never appear have a
// run length of 0.
func (m ChainMap) Get(c model.Competitor) int {
	return m[c]
}

// Max returns the longest run across all competitors, 0 for an empty map.
func (m ChainMap) Max() int {
	best := 0
	for _, n := range m {
		if n > best {
			best = n
		}
	}
	return best
}

// ChainLengths returns, for each competitor in seq, the length of its
// longest consecutive run. An empty sequence yields an empty map.
func ChainLengths(seq []model.Competitor) ChainMap {
	chains := make(ChainMap)
	if len(seq) == 0 {
		return chains
	}

	current, count := seq[0], 1
	for _, c := range seq[1:] {
		if c == current {
			count++
			continue
		}
		if count > chains[current] {
			chains[current] = count
		}
		current, count = c, 1
	}
	if count > chains[current] {
		chains[current] = count
	}
	return chains
}

// Recent returns the distinct competitors among the last k entries of seq,
// or of the whole sequence when it is shorter than k. k <= 0 yields an
// empty set, not the whole sequence; NewAnalyzer never passes such a k
// since WithRecencyDepth ignores it.
func Recent(seq []model.Competitor, k int) Set {
	set := make(Set)
	if k <= 0 {
		return set
	}
	start := len(seq) - k
	if start < 0 {
		start = 0
	}
	for _, c := range seq[start:] {
		set[c] = struct{}{}
	}
	return set
}

// TopWinners returns every competitor whose count equals the maximum count
// in dist. Ties are all included, including a tie at zero. An empty
// distribution yields an empty set.
func TopWinners(dist model.Distribution) Set {
	set := make(Set)
	if len(dist) == 0 {
		return set
	}

	first := true
	best := 0
	for _, n := range dist {
		if first || n > best {
			best = n
			first = false
		}
	}
	for c, n := range dist {
		if n == best {
			set[c] = struct{}{}
		}
	}
	return set
}

// Aggregate counts occurrences. Only competitors that actually occur become
// keys.
func Aggregate(occurrences []model.Competitor) model.Distribution {
	dist := make(model.Distribution)
	for _, c := range occurrences {
		dist[c]++
	}
	return dist
}

// AggregateOver counts occurrences and additionally seeds every roster
// member with zero, so the result always covers the whole roster.
func AggregateOver(roster model.Roster, occurrences []model.Competitor) model.Distribution {
	dist := make(model.Distribution, roster.Len())
	for _, c := range roster.Members() {
		dist[c] = 0
	}
	for _, c := range occurrences {
		dist[c]++
	}
	return dist
}
