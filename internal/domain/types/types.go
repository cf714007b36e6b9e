// Package types contains the report shapes shared by the service, the HTTP
// API and the CLI.
package types

import (
	"time"

	"github.com/okian/underdog/internal/domain/model"
)

// Report is everything derived from one analysis: the inputs the engine saw
// and what it concluded.
type Report struct {
	Roster       []model.Competitor
	Recent       []model.Competitor
	Distribution model.Distribution
	Result       model.Result
	LowWins      []model.LowWin
}

// ReasonKinds flattens every exclusion reason kind, in report order.
func (r Report) ReasonKinds() []string {
	var out []string
	for _, e := range r.Result.Exclusions {
		for _, reason := range e.Reasons {
			out = append(out, string(reason.Kind))
		}
	}
	return out
}

// SessionView is a stored session together with its current report.
type SessionView struct {
	ID        string
	Rounds    int
	CreatedAt time.Time
	UpdatedAt time.Time
	Report    Report
}
