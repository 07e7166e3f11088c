package recommend

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/scoring"
)

const (
	// MaxConnections caps suggested connections.
	MaxConnections = 10
	// MaxSearchResults caps people search results.
	MaxSearchResults = 20
	// MinQueryLength is the shortest search query that runs.
	MinQueryLength = 2
)

// Connection is a person card returned by suggestions and search.
type Connection struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location,omitempty"`
	CurrentJob string    `json:"current_job,omitempty"`
	Interests  []string  `json:"interests"`
	Skills     []string  `json:"skills"`
	Score      int       `json:"score,omitempty"`
}

func card(u *model.UserProfile, score int) Connection {
	c := Connection{
		ID:         u.ID,
		Name:       u.Profile.Name,
		Location:   u.Profile.Location,
		CurrentJob: u.Profile.CurrentJob,
		Interests:  u.Profile.Interests,
		Skills:     u.Insights.Skills,
		Score:      score,
	}
	if c.Interests == nil {
		c.Interests = []string{}
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return c
}

// RankConnections scores every candidate against current, drops zero scores
// and the current user, and returns the top MaxConnections by descending
// score. Ties keep pool order.
func RankConnections(current *model.UserProfile, pool []*model.UserProfile) []Connection {
	type scored struct {
		user  *model.UserProfile
		score int
	}

	var ranked []scored
	for _, u := range pool {
		if u == nil || (current != nil && u.ID == current.ID) {
			continue
		}
		if s := scoring.ComputeSimilarity(current, u); s > 0 {
			ranked = append(ranked, scored{user: u, score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > MaxConnections {
		ranked = ranked[:MaxConnections]
	}

	out := make([]Connection, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, card(r.user, r.score))
	}
	return out
}

// Search returns people whose name, job, interests or skills contain query,
// case-insensitively, in pool order and capped at MaxSearchResults. The user
// identified by self is skipped. Queries shorter than MinQueryLength return
// nothing.
func Search(pool []*model.UserProfile, self uuid.UUID, query string) []Connection {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Connection{}
	if len([]rune(q)) < MinQueryLength {
		return out
	}

	for _, u := range pool {
		if u == nil || u.ID == self {
			continue
		}
		if !matchesQuery(u, q) {
			continue
		}
		out = append(out, card(u, 0))
		if len(out) == MaxSearchResults {
			break
		}
	}
	return out
}

func matchesQuery(u *model.UserProfile, q string) bool {
	fields := []string{u.Profile.Name, u.Profile.CurrentJob}
	fields = append(fields, u.Profile.Interests...)
	fields = append(fields, u.Insights.Skills...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
