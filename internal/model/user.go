package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the free-form, self-declared part of a user record.
type Profile struct {
	Name       string   `json:"name"`
	Age        int      `json:"age,omitempty"`
	Location   string   `json:"location,omitempty"`
	CurrentJob string   `json:"current_job,omitempty"`
	Interests  []string `json:"interests"`
	Goals      []string `json:"goals"`
}

// ProfilePatch carries a partial profile update. Zero values keep the stored value.
type ProfilePatch struct {
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Location   string   `json:"location"`
	CurrentJob string   `json:"current_job"`
	Interests  []string `json:"interests"`
	Goals      []string `json:"goals"`
}

// Apply returns p updated with the non-empty fields of patch.
func (p Profile) Apply(patch ProfilePatch) Profile {
	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.Age != 0 {
		p.Age = patch.Age
	}
	if patch.Location != "" {
		p.Location = patch.Location
	}
	if patch.CurrentJob != "" {
		p.CurrentJob = patch.CurrentJob
	}
	if patch.Interests != nil {
		p.Interests = patch.Interests
	}
	if patch.Goals != nil {
		p.Goals = patch.Goals
	}
	return p
}

// Progress tracks coarse engagement counters.
type Progress struct {
	SessionsCompleted int       `json:"sessions_completed"`
	GoalsAchieved     int       `json:"goals_achieved"`
	LastActive        time.Time `json:"last_active"`
}

// UserProfile is the full user record. It exclusively owns its insight sets
// and assessment.
type UserProfile struct {
	ID         uuid.UUID   `json:"id"`
	Email      string      `json:"email"`
	Profile    Profile     `json:"profile"`
	Insights   Insights    `json:"insights"`
	Progress   Progress    `json:"progress"`
	Assessment *Assessment `json:"assessment,omitempty"`
	IsActive   bool        `json:"is_active"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// InsightsSummary is the view of a user's insights handed to the coach and the API.
type InsightsSummary struct {
	Passions  []string `json:"passions"`
	Strengths []string `json:"strengths"`
	Skills    []string `json:"skills"`
	Progress  Progress `json:"progress"`
}

// Summary returns the user's insights summary.
func (u *UserProfile) Summary() InsightsSummary {
	return InsightsSummary{
		Passions:  u.Insights.Passions,
		Strengths: u.Insights.Strengths,
		Skills:    u.Insights.Skills,
		Progress:  u.Progress,
	}
}
