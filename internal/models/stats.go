// internal/models/stats.go
package models

// SourceStats is the per-source response breakdown.
type SourceStats struct {
	Source       string  `json:"source"`
	Total        int     `json:"total"`
	Responded    int     `json:"responded"`
	ResponseRate float64 `json:"responseRate"`
}

// StatsSnapshot is the derived application statistics for one user. It
// is computed on demand and never persisted.
type StatsSnapshot struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"byStatus"`
	BySource        []SourceStats  `json:"bySource"`
	AvgDaysPerStage map[string]int `json:"avgDaysPerStage"`
}

// NetworkStats is the derived contact statistics for one user.
type NetworkStats struct {
	Total     int            `json:"total"`
	ByCompany map[string]int `json:"byCompany"`
	ByMetAt   map[string]int `json:"byMetAt"`
}

// StreakResult holds consecutive-day application streaks.
type StreakResult struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}
