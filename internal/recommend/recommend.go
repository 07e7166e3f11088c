// Package recommend assembles user-facing recommendations, the pipeline
// coach plan and ranked people suggestions from insight sets and scores.
package recommend

import (
	"fmt"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

const (
	// RecentSessionWindow is how many recent sessions count as "recently used".
	RecentSessionWindow = 5
	// ExplorationLimit caps the modules suggested for exploration.
	ExplorationLimit = 3
)

// Item is a single actionable recommendation.
type Item struct {
	Name   string       `json:"name"`
	Action string       `json:"action"`
	Module model.Module `json:"module"`
}

// Recommendation is a titled block of items.
type Recommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// Recommendations builds one block per non-empty passion/strength set plus an
// exploration block. recent holds the modules of the user's sessions, most
// recently updated first; only the first RecentSessionWindow are considered.
func Recommendations(in model.Insights, recent []model.Module) []Recommendation {
	out := []Recommendation{}

	if len(in.Passions) > 0 {
		items := make([]Item, 0, len(in.Passions))
		for _, p := range in.Passions {
			items = append(items, Item{
				Name:   "Learn more about " + p,
				Action: "Start a conversation about " + p,
				Module: model.ModulePassions,
			})
		}
		out = append(out, Recommendation{
			Type:        "passion",
			Title:       "Explore Your Passions",
			Description: "Based on your interests, here are some activities to try",
			Items:       items,
		})
	}

	if len(in.Strengths) > 0 {
		items := make([]Item, 0, len(in.Strengths))
		for _, s := range in.Strengths {
			items = append(items, Item{
				Name:   fmt.Sprintf("Develop %s further", s),
				Action: "Explore career opportunities using " + s,
				Module: model.ModuleCareer,
			})
		}
		out = append(out, Recommendation{
			Type:        "strength",
			Title:       "Leverage Your Strengths",
			Description: "Use your strengths to advance your goals",
			Items:       items,
		})
	}

	if unused := UnusedModules(recent); len(unused) > 0 {
		items := make([]Item, 0, len(unused))
		for _, m := range unused {
			items = append(items, Item{
				Name:   fmt.Sprintf("Explore %s", m),
				Action: fmt.Sprintf("Start a conversation about %s", m),
				Module: m,
			})
		}
		out = append(out, Recommendation{
			Type:        "exploration",
			Title:       "Try New Areas",
			Description: "Explore these modules to discover new insights",
			Items:       items,
		})
	}

	return out
}

// UnusedModules returns up to ExplorationLimit modules, in declaration order,
// that do not appear among the first RecentSessionWindow entries of recent.
// The general module is never suggested.
func UnusedModules(recent []model.Module) []model.Module {
	if len(recent) > RecentSessionWindow {
		recent = recent[:RecentSessionWindow]
	}
	used := make(map[model.Module]struct{}, len(recent))
	for _, m := range recent {
		used[m] = struct{}{}
	}

	var out []model.Module
	for _, m := range model.Modules {
		if m == model.ModuleGeneral {
			continue
		}
		if _, ok := used[m]; ok {
			continue
		}
		out = append(out, m)
		if len(out) == ExplorationLimit {
			break
		}
	}
	return out
}
