package checkin

import (
	"time"

	"cloud.google.com/go/civil"
)

type Mood string

const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodRough Mood = "rough"
)

// Points awarded for engagement events.
const (
	PointsPerCheckin      = 10
	PointsPerTaskComplete = 5
)

type DailyCheckin struct {
	ID               int64      `json:"id"`
	UserID           string     `json:"userId"`
	Date             civil.Date `json:"date"`
	Mood             Mood       `json:"mood"`
	CravingIntensity int        `json:"cravingIntensity"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type CreateCheckinRequest struct {
	Date             string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Mood             Mood    `json:"mood" validate:"required,oneof=great good okay rough"`
	CravingIntensity *int    `json:"cravingIntensity" validate:"required,min=0,max=10"`
	Notes            *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// NextStreak returns the streak after a first check-in on day, given the
// date of the previous check-in (nil when there is none).
func NextStreak(current int, last *civil.Date, day civil.Date) int {
	if last == nil {
		return 1
	}
	switch day.DaysSince(*last) {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}
