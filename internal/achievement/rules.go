package achievement

import (
	"slices"

	"cloud.google.com/go/civil"
)

// Facts is the per-user evidence the unlock rules are evaluated against.
type Facts struct {
	Streak int
	// Dates with a check-in at or below the sugar-free threshold.
	SugarFreeDates []civil.Date
	// Dates on which every task of the active challenge was completed.
	PerfectTaskDates []civil.Date
}

type Rule struct {
	Title string
	Met   func(f Facts) bool
}

// Rules is keyed by achievement title; catalog rows without a rule are
// display-only.
var Rules = []Rule{
	{Title: "Sugar-Free Week", Met: func(f Facts) bool { return LongestRun(f.SugarFreeDates) >= 7 }},
	{Title: "Meal Prep Master", Met: func(f Facts) bool { return LongestRun(f.PerfectTaskDates) >= 5 }},
	{Title: "Early Bird", Met: func(f Facts) bool { return f.Streak >= 10 }},
}

// Evaluate returns the titles of every rule f satisfies.
func Evaluate(f Facts) []string {
	var met []string
	for _, r := range Rules {
		if r.Met(f) {
			met = append(met, r.Title)
		}
	}
	return met
}

// LongestRun is the length of the longest streak of consecutive calendar
// dates. Duplicates are ignored.
func LongestRun(dates []civil.Date) int {
	if len(dates) == 0 {
		return 0
	}
	sorted := slices.Clone(dates)
	slices.SortFunc(sorted, func(a, b civil.Date) int { return a.DaysSince(b) })
	sorted = slices.Compact(sorted)

	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].DaysSince(sorted[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}
