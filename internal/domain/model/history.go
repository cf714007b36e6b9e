package model

import "fmt"

// ValidateHistory checks a recent-history sequence: it must have exactly size
// entries, all roster members.
func ValidateHistory(roster Roster, history []Competitor, size int) error {
	if len(history) != size {
		return fmt.Errorf("%w: expected %d entries, got %d", ErrInvalidHistory, size, len(history))
	}
	for i, c := range history {
		if !roster.Contains(c) {
			return fmt.Errorf("%w: entry %d: %w %q", ErrInvalidHistory, i+1, ErrUnknownCompetitor, c)
		}
	}
	return nil
}
