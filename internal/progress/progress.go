package progress

import (
	"math"

	"cloud.google.com/go/civil"
)

// SugarFreeThreshold is the highest craving intensity that still counts as a
// sugar-free day.
const SugarFreeThreshold = 3

type DayRecord struct {
	Date             civil.Date `json:"date"`
	CravingIntensity int        `json:"cravingIntensity"`
	TasksCompleted   int        `json:"tasksCompleted"`
	TotalTasks       int        `json:"totalTasks"`
}

type WeeklySummary struct {
	StartDate         civil.Date  `json:"startDate"`
	EndDate           civil.Date  `json:"endDate"`
	Days              []DayRecord `json:"days"`
	SugarFreeDays     int         `json:"sugarFreeDays"`
	SugarFreeDaysDiff int         `json:"sugarFreeDaysDiff"`
	CravingScore      float64     `json:"cravingScore"`
	CravingScoreDiff  float64     `json:"cravingScoreDiff"`
}

// TaskTally is the per-day count of task completion rows.
type TaskTally struct {
	Completed int
	Total     int
}

// Dates enumerates every calendar date in [start, end]. An inverted range
// yields nil.
func Dates(start, end civil.Date) []civil.Date {
	if end.Before(start) {
		return nil
	}
	out := make([]civil.Date, 0, end.DaysSince(start)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// PreviousRange returns the range of equal length ending the day before start.
func PreviousRange(start, end civil.Date) (civil.Date, civil.Date) {
	n := end.DaysSince(start) + 1
	return start.AddDays(-n), end.AddDays(-n)
}

// BuildDaily produces one record per date of the range. Days without a
// check-in report intensity 0 and days without task rows report
// defaultTotal tasks.
func BuildDaily(start, end civil.Date, cravings map[civil.Date]int, tasks map[civil.Date]TaskTally, defaultTotal int) []DayRecord {
	dates := Dates(start, end)
	days := make([]DayRecord, 0, len(dates))
	for _, d := range dates {
		rec := DayRecord{Date: d, CravingIntensity: cravings[d], TotalTasks: defaultTotal}
		if t, ok := tasks[d]; ok && t.Total > 0 {
			rec.TasksCompleted = t.Completed
			rec.TotalTasks = t.Total
		}
		days = append(days, rec)
	}
	return days
}

func SugarFreeDays(days []DayRecord) int {
	n := 0
	for _, d := range days {
		if d.CravingIntensity <= SugarFreeThreshold {
			n++
		}
	}
	return n
}

// CravingScore is the mean intensity rounded to one decimal, 0 when empty.
func CravingScore(days []DayRecord) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0
	for _, d := range days {
		sum += d.CravingIntensity
	}
	return Round1(float64(sum) / float64(len(days)))
}

// Summarize compares current against previous. Diffs are current minus
// previous, so a negative CravingScoreDiff means cravings went down.
func Summarize(start, end civil.Date, current, previous []DayRecord) WeeklySummary {
	if current == nil {
		current = []DayRecord{}
	}
	cur, prev := CravingScore(current), CravingScore(previous)
	sf, prevSF := SugarFreeDays(current), SugarFreeDays(previous)
	return WeeklySummary{
		StartDate:         start,
		EndDate:           end,
		Days:              current,
		SugarFreeDays:     sf,
		SugarFreeDaysDiff: sf - prevSF,
		CravingScore:      cur,
		CravingScoreDiff:  Round1(cur - prev),
	}
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MonthRange returns the first and last day of the month holding d.
func MonthRange(d civil.Date) (civil.Date, civil.Date) {
	first := civil.Date{Year: d.Year, Month: d.Month, Day: 1}
	next := civil.Date{Year: d.Year, Month: d.Month + 1, Day: 1}
	if d.Month == 12 {
		next = civil.Date{Year: d.Year + 1, Month: 1, Day: 1}
	}
	return first, next.AddDays(-1)
}

// LastNDays returns the n-day range ending on today.
func LastNDays(today civil.Date, n int) (civil.Date, civil.Date) {
	return today.AddDays(-(n - 1)), today
}
