package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestCalculate_EmptyHistory(t *testing.T) {
	result := Calculate(nil, testNow)
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 0, result.LongestStreak)
}

func TestCalculate_ThreeConsecutiveDaysEndingToday(t *testing.T) {
	dates := []time.Time{daysAgo(0), daysAgo(1), daysAgo(2)}
	result := Calculate(dates, testNow)
	assert.Equal(t, 3, result.CurrentStreak)
	assert.Equal(t, 3, result.LongestStreak)
}

func TestCalculate_GapBreaksCurrentStreak(t *testing.T) {
	dates := []time.Time{daysAgo(0), daysAgo(5)}
	result := Calculate(dates, testNow)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.LongestStreak)
}

func TestCalculate_LatestYesterdayStillCounts(t *testing.T) {
	dates := []time.Time{daysAgo(1), daysAgo(2), daysAgo(3)}
	result := Calculate(dates, testNow)
	assert.Equal(t, 3, result.CurrentStreak)
	assert.Equal(t, 3, result.LongestStreak)
}

func TestCalculate_StaleHistoryZeroesCurrentStreak(t *testing.T) {
	dates := []time.Time{daysAgo(2), daysAgo(3), daysAgo(4)}
	result := Calculate(dates, testNow)
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 3, result.LongestStreak)
}

func TestCalculate_LongestRunInThePast(t *testing.T) {
	// A five-day run two weeks back beats the active two-day run.
	dates := []time.Time{
		daysAgo(0), daysAgo(1),
		daysAgo(14), daysAgo(15), daysAgo(16), daysAgo(17), daysAgo(18),
	}
	result := Calculate(dates, testNow)
	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 5, result.LongestStreak)
}

func TestCalculate_MultipleApplicationsSameDayCollapse(t *testing.T) {
	dates := []time.Time{
		daysAgo(0), daysAgo(0).Add(-2 * time.Hour), daysAgo(0).Add(-5 * time.Hour),
		daysAgo(1),
	}
	result := Calculate(dates, testNow)
	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 2, result.LongestStreak)
}

func TestCalculate_UnsortedInput(t *testing.T) {
	dates := []time.Time{daysAgo(2), daysAgo(0), daysAgo(1)}
	result := Calculate(dates, testNow)
	assert.Equal(t, 3, result.CurrentStreak)
	assert.Equal(t, 3, result.LongestStreak)
}

func TestCalculate_DayBoundaryIsUTC(t *testing.T) {
	// 23:30 UTC yesterday and 00:30 UTC today are adjacent days even
	// though they are one hour apart.
	lateYesterday := time.Date(2025, 6, 14, 23, 30, 0, 0, time.UTC)
	earlyToday := time.Date(2025, 6, 15, 0, 30, 0, 0, time.UTC)
	result := Calculate([]time.Time{earlyToday, lateYesterday}, testNow)
	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 2, result.LongestStreak)

	// The same instants expressed in a non-UTC zone behave identically.
	est := time.FixedZone("EST", -5*3600)
	result = Calculate([]time.Time{earlyToday.In(est), lateYesterday.In(est)}, testNow)
	assert.Equal(t, 2, result.CurrentStreak)
}

func TestCalculate_SingleStaleDayLongestIsOne(t *testing.T) {
	result := Calculate([]time.Time{daysAgo(30)}, testNow)
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 1, result.LongestStreak)
}
