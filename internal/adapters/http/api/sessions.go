package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/underdog/internal/domain/model"
)

// SessionsHandler handles session requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	recent, counts := req.inputs()
	view, err := h.deps.CreateSession(r.Context(), recent, counts)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+view.ID)
	writeJSON(w, http.StatusCreated, toSessionResponse(view, false))
}

// HandleSession dispatches /sessions/{id} and /sessions/{id}/rounds.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleGet(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	case sub == "rounds" && r.Method == http.MethodPost:
		h.handleRound(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.get_session"
	view, err := h.deps.Session(r.Context(), id)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(view, false))
}

func (h *SessionsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.delete_session"
	if err := h.deps.DeleteSession(r.Context(), id); err != nil {
		writeDomainError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) handleRound(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.play_round"
	var req roundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Winner) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing winner")))
		return
	}
	view, duplicate, err := h.deps.PlayRound(r.Context(), id, model.Competitor(req.Winner), req.RoundID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(view, duplicate))
}
