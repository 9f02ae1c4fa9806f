// Package streak computes consecutive-day application streaks.
package streak

import (
	"sort"
	"time"

	"jobtrack-backend/internal/models"
)

// Calculate derives the current and longest consecutive-day streaks
// from a set of application dates. Dates collapse to distinct calendar
// days on their own UTC day boundary; time of day is irrelevant. The
// result is deterministic for a fixed now.
//
// The current streak is zero unless the most recent day is today or
// yesterday relative to now; it then extends backward while days are
// exactly one apart. The longest streak is the longest run of
// consecutive days anywhere in the history, regardless of recency.
func Calculate(dates []time.Time, now time.Time) models.StreakResult {
	if len(dates) == 0 {
		return models.StreakResult{}
	}

	days := distinctDaysDescending(dates)

	today := dayNumber(now)
	yesterday := today - 1

	currentStreak := 0
	if days[0] == today || days[0] == yesterday {
		currentStreak = 1
		for i := 1; i < len(days); i++ {
			if days[i-1]-days[i] != 1 {
				break
			}
			currentStreak++
		}
	}

	longestStreak := 0
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
			if run > longestStreak {
				longestStreak = run
			}
		} else {
			run = 1
		}
	}

	// Any non-empty history is a streak of at least one day.
	if longestStreak < currentStreak {
		longestStreak = currentStreak
	}
	if longestStreak < 1 {
		longestStreak = 1
	}

	return models.StreakResult{
		CurrentStreak: currentStreak,
		LongestStreak: longestStreak,
	}
}

// dayNumber maps an instant to its UTC calendar day as days since the
// Unix epoch.
func dayNumber(t time.Time) int {
	u := t.UTC()
	return int(time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func distinctDaysDescending(dates []time.Time) []int {
	seen := make(map[int]struct{}, len(dates))
	days := make([]int, 0, len(dates))
	for _, d := range dates {
		day := dayNumber(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))
	return days
}
