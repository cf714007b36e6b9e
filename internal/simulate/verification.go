package simulate

import (
	"errors"
	"fmt"
)

// ErrVerification reports a report that breaks an engine invariant.
var ErrVerification = errors.New("verification failed")

// Verify checks a report against the roster it was computed for:
//   - recommendation and excluded competitors partition the roster
//   - both lists follow roster order
//   - every excluded competitor carries at least one reason
//   - all_excluded matches an empty recommendation
//   - the distribution sums to windowSize
func Verify(roster []string, windowSize int, rep Report) error {
	index := make(map[string]int, len(roster))
	for i, c := range roster {
		index[c] = i
	}

	seen := make(map[string]bool, len(roster))
	check := func(list string, names []string) error {
		last := -1
		for _, c := range names {
			i, ok := index[c]
			if !ok {
				return fmt.Errorf("%w: %s names %q outside the roster", ErrVerification, list, c)
			}
			if seen[c] {
				return fmt.Errorf("%w: %q listed more than once", ErrVerification, c)
			}
			if i < last {
				return fmt.Errorf("%w: %s is out of roster order at %q", ErrVerification, list, c)
			}
			seen[c] = true
			last = i
		}
		return nil
	}

	if err := check("recommendation", rep.Recommendation); err != nil {
		return err
	}
	excluded := make([]string, len(rep.Reasons))
	for i, e := range rep.Reasons {
		if len(e.Reasons) == 0 {
			return fmt.Errorf("%w: %q excluded without a reason", ErrVerification, e.Competitor)
		}
		excluded[i] = e.Competitor
	}
	if err := check("reasons", excluded); err != nil {
		return err
	}
	if len(seen) != len(roster) {
		return fmt.Errorf("%w: %d of %d competitors accounted for", ErrVerification, len(seen), len(roster))
	}

	if rep.AllExcluded != (len(rep.Recommendation) == 0) {
		return fmt.Errorf("%w: all_excluded=%t with %d recommended", ErrVerification, rep.AllExcluded, len(rep.Recommendation))
	}

	total := 0
	for _, n := range rep.Distribution {
		total += n
	}
	if total != windowSize {
		return fmt.Errorf("%w: distribution sums to %d, want %d", ErrVerification, total, windowSize)
	}
	return nil
}
