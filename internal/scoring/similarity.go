package scoring

import "github.com/MikeSquared-Agency/compass/internal/model"

const (
	// InterestWeight is added per shared declared interest.
	InterestWeight = 2
	// SkillWeight is added per shared insight skill.
	SkillWeight = 3
)

// ComputeSimilarity scores the overlap between two users' declared interests
// and insight skills. The score only orders candidates within one pool; 0
// means nothing in common. Nil users score 0.
func ComputeSimilarity(a, b *model.UserProfile) int {
	if a == nil || b == nil {
		return 0
	}
	return Similarity(a.Profile.Interests, a.Insights.Skills, b.Profile.Interests, b.Insights.Skills)
}

// Similarity is ComputeSimilarity over raw interest and skill lists.
// Lists are treated as sets, so repeated entries count once.
func Similarity(aInterests, aSkills, bInterests, bSkills []string) int {
	return InterestWeight*overlap(aInterests, bInterests) + SkillWeight*overlap(aSkills, bSkills)
}

func overlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	counted := make(map[string]struct{}, len(a))
	n := 0
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			continue
		}
		if _, dup := counted[s]; dup {
			continue
		}
		counted[s] = struct{}{}
		n++
	}
	return n
}
