package simulate

import (
	"math/rand"
)

// Generator draws random contest outcomes from a roster.
type Generator struct {
	rng    *rand.Rand
	roster []string
}

// NewGenerator creates a deterministic generator for roster.
func NewGenerator(roster []string, seed int64) *Generator {
	r := make([]string, len(roster))
	copy(r, roster)
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // simulation, not security
		roster: r,
	}
}

// Winner picks a roster member uniformly.
func (g *Generator) Winner() string {
	return g.roster[g.rng.Intn(len(g.roster))]
}

// Inputs builds a valid initial session body: recentSize random winners
// and per-competitor counts summing to windowSize.
func (g *Generator) Inputs(recentSize, windowSize int) Inputs {
	in := Inputs{
		Recent: make([]string, recentSize),
		Counts: make(map[string]int, len(g.roster)),
	}
	for i := range in.Recent {
		in.Recent[i] = g.Winner()
	}
	for _, c := range g.roster {
		in.Counts[c] = 0
	}
	for i := 0; i < windowSize; i++ {
		in.Counts[g.Winner()]++
	}
	return in
}
