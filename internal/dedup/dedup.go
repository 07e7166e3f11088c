// Package dedup folds newly extracted insights into persistent insight sets.
package dedup

import "github.com/MikeSquared-Agency/compass/internal/model"

// Merge returns the set union of existing and candidates. Existing entries
// keep their order; new entries are appended in the order first seen.
// Equality is exact and case-sensitive. Merging the same candidates twice
// yields the same result as merging them once.
func Merge(existing, candidates []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(candidates))
	out := make([]string, 0, len(existing)+len(candidates))
	for _, list := range [][]string{existing, candidates} {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Result reports what a merge changed.
type Result struct {
	Insights model.Insights     `json:"insights"`
	Added    map[model.Kind]int `json:"added"`
}

// Total is the number of entries added across all kinds.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Added {
		n += c
	}
	return n
}

// MergeCandidates merges candidates into current, kind by kind. A candidate
// only ever lands in the set of its own kind.
func MergeCandidates(current model.Insights, cands []model.Candidate) Result {
	return MergeInsights(current, model.GroupCandidates(cands))
}

// MergeInsights merges per-kind candidate lists into current.
func MergeInsights(current model.Insights, byKind map[model.Kind][]string) Result {
	res := Result{Insights: current, Added: make(map[model.Kind]int)}
	for _, k := range model.Kinds {
		add, ok := byKind[k]
		if !ok {
			continue
		}
		before := current.Get(k)
		merged := Merge(before, add)
		res.Insights.Set(k, merged)
		if n := len(merged) - len(Merge(before, nil)); n > 0 {
			res.Added[k] = n
		}
	}
	return res
}
