package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/recommend"
)

func (s *Server) saveTests(w http.ResponseWriter, r *http.Request) {
	var patch model.AssessmentPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	a, err := s.svc.SaveAssessment(r.Context(), userID(r), patch)
	if err != nil {
		s.fail(w, r, "save tests", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessment": a})
}

func (s *Server) pipelineCoach(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.User(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, "load pipeline", err)
		return
	}
	if !u.Assessment.Complete() {
		writeJSON(w, http.StatusOK, recommend.IncompletePlan())
		return
	}
	writeJSON(w, http.StatusOK, recommend.PipelinePlan(u.Assessment))
}
