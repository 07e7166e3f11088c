package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/compass/internal/recommend"
)

func (s *Server) suggestedConnections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := s.svc.User(ctx, userID(r))
	if err != nil {
		s.fail(w, r, "load connections", err)
		return
	}
	pool, err := s.svc.Candidates(ctx, u.ID)
	if err != nil {
		s.fail(w, r, "load connections", err)
		return
	}
	writeJSON(w, http.StatusOK, recommend.RankConnections(u, pool))
}

func (s *Server) searchConnections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len([]rune(q)) < recommend.MinQueryLength {
		writeJSON(w, http.StatusOK, []recommend.Connection{})
		return
	}

	me := userID(r)
	found, err := s.svc.Search(r.Context(), me, q)
	if err != nil {
		s.fail(w, r, "search users", err)
		return
	}
	writeJSON(w, http.StatusOK, recommend.Search(found, me, q))
}
