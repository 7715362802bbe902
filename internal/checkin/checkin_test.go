package checkin

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestNextStreak(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 6, Day: 10}
	yesterday := day.AddDays(-1)
	lastWeek := day.AddDays(-7)

	testCases := []struct {
		Desc    string
		Current int
		Last    *civil.Date
		Want    int
	}{
		{Desc: "first ever check-in", Current: 0, Last: nil, Want: 1},
		{Desc: "consecutive day extends", Current: 4, Last: &yesterday, Want: 5},
		{Desc: "gap resets", Current: 9, Last: &lastWeek, Want: 1},
		{Desc: "same day keeps", Current: 3, Last: &day, Want: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Want, NextStreak(tc.Current, tc.Last, day))
		})
	}
}
