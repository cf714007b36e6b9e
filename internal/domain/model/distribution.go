package model

import "fmt"

// Distribution maps competitors to win counts over the aggregate window.
type Distribution map[Competitor]int

// Get returns the count for c. Absent competitors count as 0.
func (d Distribution) Get(c Competitor) int {
	return d[c]
}

// Total returns the sum of all counts.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Clone returns an independent copy.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for c, n := range d {
		out[c] = n
	}
	return out
}

// ValidateCounts checks per-competitor counts entered by a user: every key
// must be a roster member, no count may be negative, and the counts must sum
// to total. The returned error wraps ErrInvalidDistribution or
// ErrUnknownCompetitor.
func ValidateCounts(roster Roster, counts map[Competitor]int, total int) error {
	sum := 0
	for c, n := range counts {
		if !roster.Contains(c) {
			return fmt.Errorf("%w: %q", ErrUnknownCompetitor, c)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative count %d for %q", ErrInvalidDistribution, n, c)
		}
		sum += n
	}
	if sum != total {
		return &TotalMismatchError{Want: total, Got: sum}
	}
	return nil
}

// TotalMismatchError reports counts that do not sum to the window size.
type TotalMismatchError struct {
	Want int
	Got  int
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total number of contests must be %d, got %d", e.Want, e.Got)
}

// Unwrap lets errors.Is match ErrInvalidDistribution.
func (e *TotalMismatchError) Unwrap() error { return ErrInvalidDistribution }
