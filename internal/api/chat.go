package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

// sessionListLimit caps GET /chat/sessions.
const sessionListLimit = 10

type startSessionRequest struct {
	Module string `json:"module"`
}

type sendMessageRequest struct {
	SessionID string `json:"session_id"`
	Module    string `json:"module"`
	Content   string `json:"content"`
}

type updateSessionRequest struct {
	Status model.Status `json:"status"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cs, err := s.svc.StartSession(r.Context(), userID(r), model.ParseModule(req.Module))
	if err != nil {
		s.fail(w, r, "start session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": cs})
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sessionID := uuid.Nil
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session_id")
			return
		}
		sessionID = id
	}

	res, err := s.svc.SendMessage(r.Context(), userID(r), sessionID, model.ParseModule(req.Module), req.Content)
	if err != nil {
		s.fail(w, r, "send message", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.Sessions(r.Context(), userID(r), sessionListLimit)
	if err != nil {
		s.fail(w, r, "list sessions", err)
		return
	}
	out := make([]model.SessionSummary, 0, len(sessions))
	for _, cs := range sessions {
		out = append(out, cs.Summary())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionParam(w, r)
	if !ok {
		return
	}
	cs, err := s.svc.Session(r.Context(), userID(r), id)
	if err != nil {
		s.fail(w, r, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionParam(w, r)
	if !ok {
		return
	}
	var req updateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cs, err := s.svc.SetSessionStatus(r.Context(), userID(r), id, req.Status)
	if err != nil {
		s.fail(w, r, "update session", err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func sessionParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}
