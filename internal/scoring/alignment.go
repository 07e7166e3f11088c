// Package scoring holds the deterministic scores behind recommendations:
// passion/skill alignment and user/user similarity.
package scoring

import (
	"math"
	"strings"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

// passionKeywords maps a canonical passion key (lowercased, whitespace
// removed) to the skill keywords that support it. Passions without an entry
// fall back to their own normalized text as the only keyword.
var passionKeywords = map[string][]string{
	"ai":             {"ai", "artificial intelligence", "ml", "machine learning", "data", "software", "coding", "engineering"},
	"sustainability": {"sustainability", "climate", "environment", "green", "carbon", "fundraising", "partnerships", "policy"},
	"edtech":         {"edtech", "education", "learning", "curriculum", "ui", "ux", "product", "coding"},
}

// Keywords returns the skill keywords for a declared passion.
func Keywords(passion string) []string {
	p := normalize(passion)
	if kws, ok := passionKeywords[passionKey(p)]; ok {
		return kws
	}
	return []string{p}
}

// ComputeAlignment returns the share of passions, 0..100, supported by at
// least one skill. A passion is supported when one of its keywords contains a
// skill name or a skill name contains the keyword. No passions scores 0.
func ComputeAlignment(passions []string, skills []model.Skill) int {
	if len(passions) == 0 {
		return 0
	}

	names := make([]string, 0, len(skills))
	for _, s := range skills {
		if n := normalize(s.Name); n != "" {
			names = append(names, n)
		}
	}

	matched := 0
	for _, p := range passions {
		if passionMatches(p, names) {
			matched++
		}
	}
	return roundHalfUp(100 * float64(matched) / float64(len(passions)))
}

// Refresh recomputes a's alignment score from its passions and skills.
func Refresh(a *model.Assessment) {
	if a == nil {
		return
	}
	a.AlignmentScore = ComputeAlignment(a.Passions, a.Skills)
}

func passionMatches(passion string, skillNames []string) bool {
	// A blank passion counts toward the total but can never match.
	if normalize(passion) == "" {
		return false
	}
	for _, kw := range Keywords(passion) {
		for _, sn := range skillNames {
			if strings.Contains(sn, kw) || strings.Contains(kw, sn) {
				return true
			}
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func passionKey(normalized string) string {
	return strings.Join(strings.Fields(normalized), "")
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
