package stats

import "cloud.google.com/go/civil"

type UserStats struct {
	TotalDays      int     `json:"totalDays"`
	CompletedTasks int     `json:"completedTasks"`
	SugarFreeDays  int     `json:"sugarFreeDays"`
	AverageCraving float64 `json:"averageCraving"`
	CurrentStreak  int     `json:"currentStreak"`
	Points         int     `json:"points"`
}

// TotalDays counts calendar days from the first check-in through today,
// inclusive. Users without any check-in have zero days.
func TotalDays(first *civil.Date, today civil.Date) int {
	if first == nil {
		return 0
	}
	days := today.DaysSince(*first) + 1
	if days < 0 {
		return 0
	}
	return days
}
