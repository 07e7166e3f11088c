package scoring

import (
	"testing"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

func skills(names ...string) []model.Skill {
	out := make([]model.Skill, 0, len(names))
	for _, n := range names {
		out = append(out, model.Skill{Name: n, Level: 5})
	}
	return out
}

func TestComputeAlignment(t *testing.T) {
	tests := []struct {
		name     string
		passions []string
		skills   []model.Skill
		want     int
	}{
		{"no passions", nil, skills("Go"), 0},
		{"empty passions", []string{}, skills("Go"), 0},
		{"no skills", []string{"AI"}, nil, 0},
		{
			"keyword expansion",
			[]string{"AI", "Sustainability"},
			[]model.Skill{{Name: "Machine Learning", Level: 8}, {Name: "Carbon Accounting", Level: 5}},
			100,
		},
		{"abbreviation keyword", []string{"AI"}, skills("ML"), 100},
		{"whitespace in passion key", []string{"Ed Tech"}, skills("Curriculum Design"), 100},
		{"unknown passion keyword inside skill", []string{"Design"}, skills("UX Design Systems"), 100},
		{"skill inside unknown passion", []string{"Product Design Thinking"}, skills("design"), 100},
		{"case insensitive", []string{"  SUSTAINABILITY "}, skills("climate POLICY"), 100},
		{"two of three rounds up", []string{"AI", "EdTech", "Sustainability"}, skills("Python coding"), 67},
		{"one of three rounds down", []string{"AI", "Gardening", "Chess"}, skills("Data analysis"), 33},
		{"half", []string{"AI", "Chess"}, skills("software"), 50},
		{"half rounds up", []string{"AI", "x1", "x2", "x3", "x4", "x5", "x6", "x7"}, skills("ML"), 13},
		{"blank passion never matches", []string{"", "AI"}, skills("ML"), 50},
		{"blank skills ignored", []string{"Chess"}, skills("", "  "), 0},
		{"nothing matches", []string{"Chess"}, skills("Go"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAlignment(tt.passions, tt.skills)
			if got != tt.want {
				t.Errorf("ComputeAlignment(%q, %v) = %d, want %d", tt.passions, tt.skills, got, tt.want)
			}
		})
	}
}

func TestComputeAlignment_Bounds(t *testing.T) {
	passionSets := [][]string{nil, {"AI"}, {"AI", "Chess"}, {"", " "}, {"EdTech", "AI", "Sustainability", "Travel"}}
	skillSets := [][]model.Skill{nil, skills("a"), skills("ML", "climate", "UX"), skills("")}

	for _, p := range passionSets {
		for _, s := range skillSets {
			got := ComputeAlignment(p, s)
			if got < 0 || got > 100 {
				t.Errorf("ComputeAlignment(%q, %v) = %d, out of [0,100]", p, s, got)
			}
		}
	}
}

func TestRefresh(t *testing.T) {
	a := &model.Assessment{
		Passions:       []string{"AI", "Chess"},
		Skills:         model.SkillList{{Name: "coding", Level: 9}},
		AlignmentScore: 99,
	}
	Refresh(a)
	if a.AlignmentScore != 50 {
		t.Errorf("expected refreshed score 50, got %d", a.AlignmentScore)
	}
	Refresh(nil)
}

func TestKeywords(t *testing.T) {
	if kws := Keywords(" Ed Tech "); len(kws) == 0 || kws[0] != "edtech" {
		t.Errorf("expected edtech keywords, got %v", kws)
	}
	if kws := Keywords("Rock Climbing"); len(kws) != 1 || kws[0] != "rock climbing" {
		t.Errorf("expected fallback keyword, got %v", kws)
	}
}
