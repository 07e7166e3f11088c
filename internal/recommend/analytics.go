package recommend

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

// RecentActivityLimit caps the recent-activity list in analytics.
const RecentActivityLimit = 10

// ModuleStat counts sessions in one module.
type ModuleStat struct {
	Module model.Module `json:"module"`
	Count  int          `json:"count"`
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	Module       model.Module `json:"module"`
	Status       model.Status `json:"status"`
	LastActivity time.Time    `json:"last_activity"`
	MessageCount int          `json:"message_count"`
}

// Analytics summarises a user's session history.
type Analytics struct {
	TotalSessions     int          `json:"total_sessions"`
	CompletedSessions int          `json:"completed_sessions"`
	CompletionRate    float64      `json:"completion_rate"`
	ModuleStats       []ModuleStat `json:"module_stats"`
	RecentActivity    []Activity   `json:"recent_activity"`
}

// BuildAnalytics computes analytics over all of a user's sessions.
func BuildAnalytics(sessions []*model.ChatSession) Analytics {
	a := Analytics{
		TotalSessions:  len(sessions),
		ModuleStats:    []ModuleStat{},
		RecentActivity: []Activity{},
	}

	counts := make(map[model.Module]int)
	for _, s := range sessions {
		counts[s.Module]++
		if s.Status == model.StatusCompleted {
			a.CompletedSessions++
		}
	}
	if a.TotalSessions > 0 {
		a.CompletionRate = float64(a.CompletedSessions) / float64(a.TotalSessions) * 100
	}

	for _, m := range model.Modules {
		if n := counts[m]; n > 0 {
			a.ModuleStats = append(a.ModuleStats, ModuleStat{Module: m, Count: n})
		}
	}
	sort.SliceStable(a.ModuleStats, func(i, j int) bool {
		return a.ModuleStats[i].Count > a.ModuleStats[j].Count
	})

	for _, s := range byRecency(sessions) {
		if len(a.RecentActivity) == RecentActivityLimit {
			break
		}
		a.RecentActivity = append(a.RecentActivity, Activity{
			Module:       s.Module,
			Status:       s.Status,
			LastActivity: s.LastActivity,
			MessageCount: s.MessageCount,
		})
	}
	return a
}

// EngagementScore is the completed share of sessions as a rounded percentage.
func EngagementScore(total, completed int) int {
	if total <= 0 {
		return 0
	}
	pct := math.Min(100, float64(completed)/float64(total)*100)
	return int(math.Floor(pct + 0.5))
}

// ProgressPoint is one session on the progress timeline.
type ProgressPoint struct {
	Date          time.Time    `json:"date"`
	SessionNumber int          `json:"session_number"`
	Module        model.Module `json:"module"`
	MessageCount  int          `json:"message_count"`
}

// Progress is the engagement timeline for a user.
type Progress struct {
	ProgressData              []ProgressPoint `json:"progress_data"`
	SessionsByDay             map[string]int  `json:"sessions_by_day"`
	TotalSessions             int             `json:"total_sessions"`
	AverageMessagesPerSession float64         `json:"average_messages_per_session"`
}

// BuildProgress orders sessions by creation and buckets them by UTC day.
func BuildProgress(sessions []*model.ChatSession) Progress {
	ordered := slices.Clone(sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	p := Progress{
		ProgressData:  make([]ProgressPoint, 0, len(ordered)),
		SessionsByDay: make(map[string]int),
		TotalSessions: len(ordered),
	}
	totalMessages := 0
	for i, s := range ordered {
		p.ProgressData = append(p.ProgressData, ProgressPoint{
			Date:          s.CreatedAt,
			SessionNumber: i + 1,
			Module:        s.Module,
			MessageCount:  s.MessageCount,
		})
		p.SessionsByDay[s.CreatedAt.UTC().Format(time.DateOnly)]++
		totalMessages += s.MessageCount
	}
	if len(ordered) > 0 {
		p.AverageMessagesPerSession = float64(totalMessages) / float64(len(ordered))
	}
	return p
}

// RecentModules returns session modules, most recently updated first.
func RecentModules(sessions []*model.ChatSession) []model.Module {
	ordered := byRecency(sessions)
	out := make([]model.Module, 0, len(ordered))
	for _, s := range ordered {
		out = append(out, s.Module)
	}
	return out
}

func byRecency(sessions []*model.ChatSession) []*model.ChatSession {
	ordered := slices.Clone(sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].UpdatedAt.After(ordered[j].UpdatedAt)
	})
	return ordered
}
