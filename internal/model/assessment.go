package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Pipeline stages a user can report in their assessment.
const (
	StageIdeation    = "Ideation"
	StageValidation  = "Validation"
	StagePrototyping = "Prototyping"
	StageLaunch      = "Launch"
	StageScaling     = "Scaling"
)

// MaxSkillLevel is the top of the self-rated skill scale.
const MaxSkillLevel = 10

// BigFive holds the five personality trait scores, each in [0,1].
type BigFive struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// Personality is the personality part of an assessment.
type Personality struct {
	Type    string   `json:"type"`
	BigFive *BigFive `json:"big_five,omitempty"`
}

// Demographics is the demographic part of an assessment.
type Demographics struct {
	YearsExperience int    `json:"years_experience,omitempty"`
	Location        string `json:"location,omitempty"`
	AgeRange        string `json:"age_range,omitempty"`
}

// Skill is a self-rated skill. Skills supplied as bare strings have level 0.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// SkillList decodes skills given either as bare strings or as {name, level}
// records. Entries of any other shape, or with a blank name, are dropped.
type SkillList []Skill

func (l *SkillList) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not a list at all: treat as no skills.
		*l = nil
		return nil
	}
	out := make(SkillList, 0, len(raw))
	for _, item := range raw {
		if s, ok := decodeSkill(item); ok {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// StringList decodes a list of strings leniently. A value that is not a list
// decodes as empty and non-string entries are dropped. JSON null leaves the
// list nil so partial updates keep the stored value.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(StringList, 0, len(raw))
	for _, item := range raw {
		if isNull(item) {
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func decodeSkill(item json.RawMessage) (Skill, bool) {
	var name string
	if err := json.Unmarshal(item, &name); err == nil {
		name = strings.TrimSpace(name)
		return Skill{Name: name}, name != ""
	}
	var rec struct {
		Name  *string  `json:"name"`
		Level *float64 `json:"level"`
	}
	if err := json.Unmarshal(item, &rec); err != nil || rec.Name == nil {
		return Skill{}, false
	}
	s := Skill{Name: strings.TrimSpace(*rec.Name)}
	if s.Name == "" {
		return Skill{}, false
	}
	if rec.Level != nil {
		s.Level = clampLevel(int(*rec.Level))
	}
	return s, true
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxSkillLevel {
		return MaxSkillLevel
	}
	return level
}

// Assessment is the structured test a user fills in for the pipeline coach.
// AlignmentScore is derived from Passions and Skills and must be recomputed
// (scoring.Refresh) in the same update that changes either of them.
type Assessment struct {
	Personality            *Personality  `json:"personality,omitempty"`
	Passions               []string      `json:"passions"`
	Skills                 SkillList     `json:"skills"`
	Demographics           *Demographics `json:"demographics,omitempty"`
	CurrentStage           string        `json:"current_stage,omitempty"`
	CurrentIdeaDescription string        `json:"current_idea_description,omitempty"`
	AlignmentScore         int           `json:"alignment_score"`
}

// AssessmentPatch is a partial assessment update. Nil or empty fields keep
// the previously stored value.
type AssessmentPatch struct {
	Personality            *Personality  `json:"personality"`
	Passions               StringList    `json:"passions"`
	Skills                 SkillList     `json:"skills"`
	Demographics           *Demographics `json:"demographics"`
	CurrentStage           string        `json:"current_stage"`
	CurrentIdeaDescription string        `json:"current_idea_description"`
}

// Apply merges patch over a (which may be nil) and returns the new assessment.
// The alignment score is left for the caller to refresh.
func (a *Assessment) Apply(patch AssessmentPatch) *Assessment {
	var next Assessment
	if a != nil {
		next = *a
	}
	if patch.Personality != nil {
		next.Personality = patch.Personality
	}
	if patch.Passions != nil {
		next.Passions = patch.Passions
	}
	if patch.Skills != nil {
		next.Skills = patch.Skills
	}
	if patch.Demographics != nil {
		next.Demographics = patch.Demographics
	}
	if patch.CurrentStage != "" {
		next.CurrentStage = strings.TrimSpace(patch.CurrentStage)
	}
	if patch.CurrentIdeaDescription != "" {
		next.CurrentIdeaDescription = patch.CurrentIdeaDescription
	}
	return &next
}

// Complete reports whether the assessment has enough data for a personalised plan.
func (a *Assessment) Complete() bool {
	return a != nil && len(a.Passions) > 0 && len(a.Skills) > 0 && a.Demographics != nil
}
