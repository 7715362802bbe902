package challenge

import (
	"math"
	"time"

	"cloud.google.com/go/civil"
)

type Challenge struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

type Task struct {
	ID          int64   `json:"id"`
	ChallengeID int64   `json:"challengeId"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Position    int     `json:"position"`
}

type UserChallenge struct {
	ID                   int64      `json:"id"`
	UserID               string     `json:"userId"`
	ChallengeID          int64      `json:"challengeId"`
	StartDate            civil.Date `json:"startDate"`
	CurrentDay           int        `json:"currentDay"`
	CompletionPercentage int        `json:"completionPercentage"`
	IsCompleted          bool       `json:"isCompleted"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	Challenge            *Challenge `json:"challenge,omitempty"`
}

// TaskView is a catalog task merged with the user's completion flag for a day.
type TaskView struct {
	Task
	Date      civil.Date `json:"date"`
	Completed bool       `json:"completed"`
}

type DayView struct {
	Day       int            `json:"day"`
	Challenge *UserChallenge `json:"challenge"`
}

type UpdateTaskRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// CurrentDay is the 1-indexed day of a challenge started on start, capped at
// duration.
func CurrentDay(start, today civil.Date, duration int) int {
	day := today.DaysSince(start) + 1
	if day > duration {
		day = duration
	}
	if day < 1 {
		day = 1
	}
	return day
}

// CompletionPercentage blends the elapsed days ratio with today's task
// ratio and clamps the result to [0, 100].
func CompletionPercentage(currentDay, duration, completedToday, totalToday int) int {
	var daysPct, tasksPct float64
	if duration > 0 {
		daysPct = float64(currentDay) / float64(duration) * 100
	}
	if totalToday > 0 {
		tasksPct = float64(completedToday) / float64(totalToday) * 100
	}
	return clamp(int(math.Round((daysPct+tasksPct)/2)), 0, 100)
}

// Finished reports whether a challenge at pct should move to completed.
func Finished(pct int) bool {
	return pct >= 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Refresh recomputes the lazily derived currentDay for today.
func (uc *UserChallenge) Refresh(today civil.Date, duration int) {
	if uc.IsCompleted {
		return
	}
	uc.CurrentDay = CurrentDay(uc.StartDate, today, duration)
}
