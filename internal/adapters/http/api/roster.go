package api

import "net/http"

// RosterHandler handles roster requests.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

// HandleGetRoster handles GET /roster requests.
func (h *RosterHandler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	a := h.deps.Analyzer()
	writeJSON(w, http.StatusOK, rosterResponse{
		Competitors:     h.deps.Roster().Names(),
		RecentSize:      h.deps.RecentSize(),
		WindowSize:      h.deps.WindowSize(),
		RecencyDepth:    a.RecencyDepth(),
		StreakThreshold: a.StreakThreshold(),
		LowWinThreshold: a.LowWinThreshold(),
	})
}
