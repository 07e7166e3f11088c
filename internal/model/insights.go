package model

// Kind is one of the four insight categories.
type Kind string

const (
	KindPassions  Kind = "passions"
	KindStrengths Kind = "strengths"
	KindSkills    Kind = "skills"
	KindGoals     Kind = "goals"
)

// Kinds lists insight kinds in the order they are merged and reported.
var Kinds = []Kind{KindPassions, KindStrengths, KindSkills, KindGoals}

// Candidate is a freshly extracted insight awaiting merge. It is never persisted on its own.
type Candidate struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Insights is a user's (or a session's) insight sets. Each slice behaves as a
// set: entries are unique by exact string equality and only ever grow through
// dedup.Merge.
type Insights struct {
	Passions  []string `json:"passions"`
	Strengths []string `json:"strengths"`
	Skills    []string `json:"skills"`
	Goals     []string `json:"goals"`
}

// Get returns the set for kind k.
func (in Insights) Get(k Kind) []string {
	switch k {
	case KindPassions:
		return in.Passions
	case KindStrengths:
		return in.Strengths
	case KindSkills:
		return in.Skills
	case KindGoals:
		return in.Goals
	}
	return nil
}

// Set replaces the set for kind k. Unknown kinds are ignored.
func (in *Insights) Set(k Kind, values []string) {
	switch k {
	case KindPassions:
		in.Passions = values
	case KindStrengths:
		in.Strengths = values
	case KindSkills:
		in.Skills = values
	case KindGoals:
		in.Goals = values
	}
}

// GroupCandidates splits candidates by kind, keeping their relative order.
func GroupCandidates(cands []Candidate) map[Kind][]string {
	out := make(map[Kind][]string)
	for _, c := range cands {
		out[c.Kind] = append(out[c.Kind], c.Text)
	}
	return out
}
