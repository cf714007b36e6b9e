package model

import "errors"

// Sentinel error kinds for input validation. The analysis engine never
// returns these; callers check inputs before invoking it.
var (
	ErrInvalidRoster       = errors.New("invalid roster")
	ErrInvalidHistory      = errors.New("invalid recent history")
	ErrInvalidDistribution = errors.New("invalid win distribution")
	ErrUnknownCompetitor   = errors.New("unknown competitor")
	ErrSessionNotFound     = errors.New("session not found")
)

// Validation kinds reported by ValidationKind. They double as API error
// codes and metric labels.
const (
	KindInvalidDistribution = "invalid_distribution"
	KindInvalidHistory      = "invalid_history"
	KindUnknownCompetitor   = "unknown_competitor"
)

// ValidationKind classifies an input error, returning "" for errors that are
// not validation failures. Unknown competitors are checked first since
// history errors may wrap them too.
func ValidationKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCompetitor):
		return KindUnknownCompetitor
	case errors.Is(err, ErrInvalidDistribution):
		return KindInvalidDistribution
	case errors.Is(err, ErrInvalidHistory):
		return KindInvalidHistory
	default:
		return ""
	}
}
