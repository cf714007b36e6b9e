package api

import (
	"time"

	"github.com/okian/underdog/internal/domain/model"
	"github.com/okian/underdog/internal/domain/types"
)

// analyzeRequest mirrors the OpenAPI schema for POST /analyze and
// POST /sessions.
type analyzeRequest struct {
	Recent []string       `json:"recent"`
	Counts map[string]int `json:"counts"`
}

func (r analyzeRequest) inputs() ([]model.Competitor, map[model.Competitor]int) {
	counts := make(map[model.Competitor]int, len(r.Counts))
	for name, n := range r.Counts {
		counts[model.Competitor(name)] = n
	}
	return model.Competitors(r.Recent...), counts
}

// roundRequest mirrors the OpenAPI schema for POST /sessions/{id}/rounds.
type roundRequest struct {
	Winner  string `json:"winner"`
	RoundID string `json:"round_id,omitempty"`
}

type rosterResponse struct {
	Competitors     []string `json:"competitors"`
	RecentSize      int      `json:"recent_size"`
	WindowSize      int      `json:"window_size"`
	RecencyDepth    int      `json:"recency_depth"`
	StreakThreshold int      `json:"streak_threshold"`
	LowWinThreshold int      `json:"low_win_threshold"`
}

type reasonResponse struct {
	Kind   string `json:"kind"`
	Streak int    `json:"streak,omitempty"`
	Text   string `json:"text"`
}

type exclusionResponse struct {
	Competitor string           `json:"competitor"`
	Reasons    []reasonResponse `json:"reasons"`
}

type lowWinResponse struct {
	Competitor string `json:"competitor"`
	Count      int    `json:"count"`
}

type reportResponse struct {
	Recommendation []string            `json:"recommendation"`
	Reasons        []exclusionResponse `json:"reasons"`
	ReasonsText    map[string]string   `json:"reasons_text"`
	LowWins        []lowWinResponse    `json:"low_wins"`
	AllExcluded    bool                `json:"all_excluded"`
	Recent         []string            `json:"recent"`
	Distribution   map[string]int      `json:"distribution"`
}

type sessionResponse struct {
	ID        string         `json:"id"`
	Rounds    int            `json:"rounds"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Duplicate bool           `json:"duplicate,omitempty"`
	Report    reportResponse `json:"report"`
}

func toReportResponse(rep types.Report) reportResponse {
	out := reportResponse{
		Recommendation: names(rep.Result.Recommendation),
		Reasons:        make([]exclusionResponse, 0, len(rep.Result.Exclusions)),
		ReasonsText:    make(map[string]string, len(rep.Result.Exclusions)),
		LowWins:        make([]lowWinResponse, 0, len(rep.LowWins)),
		AllExcluded:    rep.Result.AllExcluded(),
		Recent:         names(rep.Recent),
		Distribution:   make(map[string]int, len(rep.Distribution)),
	}
	for _, e := range rep.Result.Exclusions {
		reasons := make([]reasonResponse, len(e.Reasons))
		for i, r := range e.Reasons {
			reasons[i] = reasonResponse{Kind: string(r.Kind), Streak: r.Streak, Text: r.String()}
		}
		out.Reasons = append(out.Reasons, exclusionResponse{Competitor: string(e.Competitor), Reasons: reasons})
		out.ReasonsText[string(e.Competitor)] = e.Text()
	}
	for _, lw := range rep.LowWins {
		out.LowWins = append(out.LowWins, lowWinResponse{Competitor: string(lw.Competitor), Count: lw.Count})
	}
	for c, n := range rep.Distribution {
		out.Distribution[string(c)] = n
	}
	return out
}

func toSessionResponse(v types.SessionView, duplicate bool) sessionResponse {
	return sessionResponse{
		ID:        v.ID,
		Rounds:    v.Rounds,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
		Duplicate: duplicate,
		Report:    toReportResponse(v.Report),
	}
}

func names(cs []model.Competitor) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
