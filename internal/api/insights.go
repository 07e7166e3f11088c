package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/compass/internal/recommend"
)

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.Sessions(r.Context(), userID(r), 0)
	if err != nil {
		s.fail(w, r, "load analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, recommend.BuildAnalytics(sessions))
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.Sessions(r.Context(), userID(r), 0)
	if err != nil {
		s.fail(w, r, "load progress", err)
		return
	}
	writeJSON(w, http.StatusOK, recommend.BuildProgress(sessions))
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := s.svc.User(ctx, userID(r))
	if err != nil {
		s.fail(w, r, "load recommendations", err)
		return
	}
	sessions, err := s.svc.Sessions(ctx, u.ID, recommend.RecentSessionWindow)
	if err != nil {
		s.fail(w, r, "load recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, recommend.Recommendations(u.Insights, recommend.RecentModules(sessions)))
}
