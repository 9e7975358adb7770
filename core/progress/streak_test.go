package progress

import (
	"testing"
	"time"

	"github.com/trezcool/mazoezi/core"
)

func Test_UpdateStreak(t *testing.T) {
	today := core.NewDate(2026, time.March, 10)

	tests := []struct {
		name        string
		progress    *UserProgress
		today       core.Date
		wantCurrent int
		wantLongest int
		wantDate    core.Date
	}{
		{
			name:        "first ever event starts a streak",
			progress:    nil,
			today:       today,
			wantCurrent: 1,
			wantLongest: 1,
			wantDate:    today,
		},
		{
			name: "same day is a no-op",
			progress: &UserProgress{
				CurrentStreak: 3, LongestStreak: 5, LastActivityDate: today,
			},
			today:       today,
			wantCurrent: 3,
			wantLongest: 5,
			wantDate:    today,
		},
		{
			name: "consecutive day extends the streak",
			progress: &UserProgress{
				CurrentStreak: 3, LongestStreak: 5, LastActivityDate: today.AddDays(-1),
			},
			today:       today,
			wantCurrent: 4,
			wantLongest: 5,
			wantDate:    today,
		},
		{
			name: "extension past the record updates longest",
			progress: &UserProgress{
				CurrentStreak: 5, LongestStreak: 5, LastActivityDate: today.AddDays(-1),
			},
			today:       today,
			wantCurrent: 6,
			wantLongest: 6,
			wantDate:    today,
		},
		{
			name: "two day gap resets",
			progress: &UserProgress{
				CurrentStreak: 7, LongestStreak: 9, LastActivityDate: today.AddDays(-2),
			},
			today:       today,
			wantCurrent: 1,
			wantLongest: 9,
			wantDate:    today,
		},
		{
			name: "long gap resets",
			progress: &UserProgress{
				CurrentStreak: 30, LongestStreak: 30, LastActivityDate: today.AddDays(-100),
			},
			today:       today,
			wantCurrent: 1,
			wantLongest: 30,
			wantDate:    today,
		},
		{
			name: "zero last activity date counts as a gap",
			progress: &UserProgress{
				CurrentStreak: 0, LongestStreak: 0,
			},
			today:       today,
			wantCurrent: 1,
			wantLongest: 1,
			wantDate:    today,
		},
		{
			name: "month boundary still counts as consecutive",
			progress: &UserProgress{
				CurrentStreak: 2, LongestStreak: 2, LastActivityDate: core.NewDate(2026, time.February, 28),
			},
			today:       core.NewDate(2026, time.March, 1),
			wantCurrent: 3,
			wantLongest: 3,
			wantDate:    core.NewDate(2026, time.March, 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateStreak(tt.progress, tt.today)
			if got.CurrentStreak != tt.wantCurrent {
				t.Errorf("UpdateStreak() CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantCurrent)
			}
			if got.LongestStreak != tt.wantLongest {
				t.Errorf("UpdateStreak() LongestStreak = %d, want %d", got.LongestStreak, tt.wantLongest)
			}
			if !got.LastActivityDate.Equal(tt.wantDate) {
				t.Errorf("UpdateStreak() LastActivityDate = %s, want %s", got.LastActivityDate, tt.wantDate)
			}
			if got.CurrentStreak > got.LongestStreak {
				t.Errorf("UpdateStreak() CurrentStreak %d exceeds LongestStreak %d", got.CurrentStreak, got.LongestStreak)
			}
		})
	}
}
