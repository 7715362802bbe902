package challenge

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func d(s string) civil.Date {
	out, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return out
}

func TestCurrentDay(t *testing.T) {
	testCases := []struct {
		Desc     string
		Start    string
		Today    string
		Duration int
		Want     int
	}{
		{Desc: "start day is day one", Start: "2024-04-01", Today: "2024-04-01", Duration: 14, Want: 1},
		{Desc: "eighth day", Start: "2024-04-01", Today: "2024-04-08", Duration: 14, Want: 8},
		{Desc: "capped at duration", Start: "2024-04-01", Today: "2024-05-30", Duration: 14, Want: 14},
		{Desc: "start in future floors at one", Start: "2024-04-05", Today: "2024-04-01", Duration: 7, Want: 1},
		{Desc: "across month end", Start: "2024-01-30", Today: "2024-02-02", Duration: 10, Want: 4},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Want, CurrentDay(d(tc.Start), d(tc.Today), tc.Duration))
		})
	}
}

func TestCompletionPercentage(t *testing.T) {
	testCases := []struct {
		Desc     string
		Day      int
		Duration int
		Done     int
		Total    int
		Want     int
	}{
		{Desc: "day 8 of 14 with half the tasks", Day: 8, Duration: 14, Done: 2, Total: 4, Want: 54},
		{Desc: "first day nothing done", Day: 1, Duration: 14, Done: 0, Total: 4, Want: 4},
		{Desc: "last day all done", Day: 14, Duration: 14, Done: 4, Total: 4, Want: 100},
		{Desc: "more completions than tasks is clamped", Day: 14, Duration: 14, Done: 6, Total: 4, Want: 100},
		{Desc: "no tasks", Day: 7, Duration: 14, Done: 0, Total: 0, Want: 25},
		{Desc: "zero duration", Day: 1, Duration: 0, Done: 0, Total: 4, Want: 0},
		{Desc: "negative input is clamped", Day: -20, Duration: 7, Done: 0, Total: 4, Want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Want, CompletionPercentage(tc.Day, tc.Duration, tc.Done, tc.Total))
		})
	}
}

func TestFinished(t *testing.T) {
	assert.False(t, Finished(99))
	assert.True(t, Finished(100))
}

func TestRefresh(t *testing.T) {
	uc := &UserChallenge{StartDate: d("2024-04-01"), CurrentDay: 1}
	uc.Refresh(d("2024-04-05"), 14)
	assert.Equal(t, 5, uc.CurrentDay)

	done := &UserChallenge{StartDate: d("2024-04-01"), CurrentDay: 3, IsCompleted: true}
	done.Refresh(d("2024-04-10"), 14)
	assert.Equal(t, 3, done.CurrentDay)
}
