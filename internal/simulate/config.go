package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Rounds      int           // Number of rounds to play
	RPS         float64       // Round pacing; non-positive means unpaced
	Timeout     time.Duration // HTTP request timeout
	Seed        int64         // Seed for the winner generator
	ReplayEvery int           // Replay every Nth round ID to check idempotency; 0 disables
	Keep        bool          // Keep the session instead of deleting it
	Verbose     bool          // Log every round
}

// Stats holds simulation statistics.
type Stats struct {
	SessionID    string
	RoundsPlayed int
	Replays      int
	Duplicates   int
	Failed       int
	Verified     int
	AllExcluded  int
	Wins         map[string]int
	Recommended  map[string]int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// Roster mirrors GET /roster.
type Roster struct {
	Competitors     []string `json:"competitors"`
	RecentSize      int      `json:"recent_size"`
	WindowSize      int      `json:"window_size"`
	RecencyDepth    int      `json:"recency_depth"`
	StreakThreshold int      `json:"streak_threshold"`
	LowWinThreshold int      `json:"low_win_threshold"`
}

// Inputs mirrors the body of POST /sessions.
type Inputs struct {
	Recent []string       `json:"recent"`
	Counts map[string]int `json:"counts"`
}

// Reason is one exclusion tag in a report.
type Reason struct {
	Kind   string `json:"kind"`
	Streak int    `json:"streak,omitempty"`
	Text   string `json:"text"`
}

// Exclusion lists the reasons a competitor was excluded.
type Exclusion struct {
	Competitor string   `json:"competitor"`
	Reasons    []Reason `json:"reasons"`
}

// Report mirrors the report object returned by the API.
type Report struct {
	Recommendation []string          `json:"recommendation"`
	Reasons        []Exclusion       `json:"reasons"`
	ReasonsText    map[string]string `json:"reasons_text"`
	AllExcluded    bool              `json:"all_excluded"`
	Recent         []string          `json:"recent"`
	Distribution   map[string]int    `json:"distribution"`
}

// Session mirrors the session object returned by the API.
type Session struct {
	ID        string `json:"id"`
	Rounds    int    `json:"rounds"`
	Duplicate bool   `json:"duplicate"`
	Report    Report `json:"report"`
}

type roundRequest struct {
	Winner  string `json:"winner"`
	RoundID string `json:"round_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
