package progress

import "github.com/trezcool/mazoezi/core"

// StreakResult is the streak portion of an updated progress record.
type StreakResult struct {
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate core.Date
}

// UpdateStreak decides whether a qualifying event on `today` increments,
// resets or holds the daily streak. Pure function; persistence is the
// Service's concern.
//
// A nil progress (first-ever event) starts a streak of 1. An event on the
// same calendar day as the last activity is a no-op, so multiple events on
// one day never double-count. Activity exactly one day after the last
// extends the streak; any longer gap resets it to 1.
func UpdateStreak(p *UserProgress, today core.Date) StreakResult {
	if p == nil {
		return StreakResult{CurrentStreak: 1, LongestStreak: 1, LastActivityDate: today}
	}

	if p.LastActivityDate.Equal(today) {
		return StreakResult{
			CurrentStreak:    p.CurrentStreak,
			LongestStreak:    p.LongestStreak,
			LastActivityDate: p.LastActivityDate,
		}
	}

	streak := 1
	if p.LastActivityDate.Equal(today.AddDays(-1)) {
		streak = p.CurrentStreak + 1
	}

	longest := p.LongestStreak
	if streak > longest {
		longest = streak
	}
	return StreakResult{CurrentStreak: streak, LongestStreak: longest, LastActivityDate: today}
}
