package recommend

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/scoring"
)

// Skill level thresholds splitting an assessment into strengths and gaps.
const (
	StrengthLevel = 7
	GapLevel      = 4
)

// Step is one stage of the pipeline plan.
type Step struct {
	StepNumber int    `json:"step_number"`
	Action     string `json:"action"`
	Tips       string `json:"tips"`
}

// Plan is the pipeline coach output. Its JSON shape is consumed by clients as is.
type Plan struct {
	Summary            string   `json:"summary"`
	Steps              []Step   `json:"steps"`
	NextRecommendation string   `json:"next_recommendation"`
	PotentialMatches   []string `json:"potential_matches"`
}

// IncompletePlan is returned while the assessment lacks passions, skills or demographics.
func IncompletePlan() Plan {
	return Plan{
		Summary: "Complete Tests to personalize your pipeline.",
		Steps: []Step{
			{StepNumber: 1, Action: "Open Tests", Tips: "Fill personality, top 3 passions, skills with levels, demographics."},
		},
		NextRecommendation: "Submit your Tests, then reload the Pipeline Coach.",
		PotentialMatches:   []string{},
	}
}

var defaultMatches = []string{
	"Growth marketer (climate tech)",
	"Fundraising/partnerships lead",
	"Designer for gamification",
}

// PipelinePlan turns an assessment into the six-stage idea-to-business plan.
// The alignment score is recomputed from the assessment rather than read
// from the stored value.
func PipelinePlan(a *model.Assessment) Plan {
	if !a.Complete() {
		return IncompletePlan()
	}

	personality := "Unknown"
	if a.Personality != nil && strings.TrimSpace(a.Personality.Type) != "" {
		personality = strings.TrimSpace(a.Personality.Type)
	}
	stage := strings.TrimSpace(a.CurrentStage)
	if stage == "" {
		stage = model.StageIdeation
	}

	strengths, gaps := SplitSkills(a.Skills)
	alignment := scoring.ComputeAlignment(a.Passions, a.Skills)

	summary := fmt.Sprintf("As a %s with passions in %s, alignment %d%%. Strengths: %s. Gaps: %s. Focus: %s.",
		personality,
		strings.Join(a.Passions, ", "),
		alignment,
		joinOr(strengths, "n/a"),
		joinOr(gaps, "n/a"),
		stage,
	)

	next := "Proceed to next pipeline stage."
	if stage == model.StageIdeation {
		next = "Run Validation interviews next."
	}

	return Plan{
		Summary: summary,
		Steps: []Step{
			{StepNumber: 1, Action: "Ideation: sharpen problem/persona and JTBD", Tips: "Define 1 target persona and top 3 pains. Post to Ideas with success criteria."},
			{StepNumber: 2, Action: "Validation: 10 interviews + 4-question survey", Tips: "Aim for ≥70% strong pain signal and 3 pre-commit emails."},
			{StepNumber: 3, Action: "Collaborators: close gaps", Tips: "Use Matches to find: " + joinOr(gaps, "marketing, fundraising")},
			{StepNumber: 4, Action: "Prototyping: 1-week MVP", Tips: "Define 1 core flow, choose no-code or code based on skills, daily feedback loop."},
			{StepNumber: 5, Action: "Launch: minimal GTM test", Tips: "Landing page + single channel. Goal: 100 visits, 20 signups, 5 calls."},
			{StepNumber: 6, Action: "Scaling: metrics + SWOT + pivot rules", Tips: "North-star: WAU; pivot if activation <5% after 2 iterations."},
		},
		NextRecommendation: next,
		PotentialMatches:   append([]string(nil), defaultMatches...),
	}
}

// SplitSkills returns skill names at or above StrengthLevel and at or below GapLevel.
func SplitSkills(skills []model.Skill) (strengths, gaps []string) {
	for _, s := range skills {
		switch {
		case s.Level >= StrengthLevel:
			strengths = append(strengths, s.Name)
		case s.Level <= GapLevel:
			gaps = append(gaps, s.Name)
		}
	}
	return strengths, gaps
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
