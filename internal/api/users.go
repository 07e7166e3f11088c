package api

import (
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/recommend"
)

// dashboardRecent is how many sessions the dashboard lists.
const dashboardRecent = 5

type dashboardProgress struct {
	SessionsCompleted int       `json:"sessions_completed"`
	GoalsAchieved     int       `json:"goals_achieved"`
	LastActive        time.Time `json:"last_active"`
	TotalSessions     int       `json:"total_sessions"`
	EngagementScore   int       `json:"engagement_score"`
}

type dashboardResponse struct {
	Profile        model.Profile          `json:"profile"`
	Insights       model.InsightsSummary  `json:"insights"`
	Progress       dashboardProgress      `json:"progress"`
	RecentSessions []model.SessionSummary `json:"recent_sessions"`
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.User(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch model.ProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	u, err := s.svc.UpdateProfile(r.Context(), userID(r), patch)
	if err != nil {
		s.fail(w, r, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.User(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, "get insights", err)
		return
	}
	writeJSON(w, http.StatusOK, u.Summary())
}

func (s *Server) mergeInsights(w http.ResponseWriter, r *http.Request) {
	var in model.Insights
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := s.svc.MergeInsights(r.Context(), userID(r), in)
	if err != nil {
		s.fail(w, r, "update insights", err)
		return
	}
	writeJSON(w, http.StatusOK, u.Summary())
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := s.svc.User(ctx, userID(r))
	if err != nil {
		s.fail(w, r, "load dashboard", err)
		return
	}
	sessions, err := s.svc.Sessions(ctx, u.ID, 0)
	if err != nil {
		s.fail(w, r, "load dashboard", err)
		return
	}

	completed := 0
	for _, cs := range sessions {
		if cs.Status == model.StatusCompleted {
			completed++
		}
	}
	recent := make([]model.SessionSummary, 0, dashboardRecent)
	for _, cs := range sessions {
		if len(recent) == dashboardRecent {
			break
		}
		recent = append(recent, cs.Summary())
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Profile:  u.Profile,
		Insights: u.Summary(),
		Progress: dashboardProgress{
			SessionsCompleted: u.Progress.SessionsCompleted,
			GoalsAchieved:     u.Progress.GoalsAchieved,
			LastActive:        u.Progress.LastActive,
			TotalSessions:     len(sessions),
			EngagementScore:   recommend.EngagementScore(len(sessions), completed),
		},
		RecentSessions: recent,
	})
}
