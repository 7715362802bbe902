package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/progress"
)

type fakeProgress struct {
	today      civil.Date
	start, end civil.Date
	month      civil.Date
	err        error
}

func (f *fakeProgress) Today() civil.Date { return f.today }

func (f *fakeProgress) GetDailyProgress(_ context.Context, _ string, start, end civil.Date) ([]progress.DayRecord, error) {
	f.start, f.end = start, end
	if f.err != nil {
		return nil, f.err
	}
	return progress.BuildDaily(start, end, nil, nil, 4), nil
}

func (f *fakeProgress) GetProgress(_ context.Context, _ string, start, end civil.Date) (*progress.WeeklySummary, error) {
	f.start, f.end = start, end
	if f.err != nil {
		return nil, f.err
	}
	s := progress.Summarize(start, end, progress.BuildDaily(start, end, nil, nil, 4), nil)
	return &s, nil
}

func (f *fakeProgress) GetWeeklyProgress(ctx context.Context, clerkID string) (*progress.WeeklySummary, error) {
	start, end := progress.LastNDays(f.today, 7)
	return f.GetProgress(ctx, clerkID, start, end)
}

func (f *fakeProgress) GetMonthlyProgress(_ context.Context, _ string, month civil.Date) ([]progress.DayRecord, error) {
	f.month = month
	start, end := progress.MonthRange(month)
	return progress.BuildDaily(start, end, nil, nil, 4), nil
}

func date(y int, m int, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestProgressHandler_GetProgressRanges(t *testing.T) {
	today := date(2025, 3, 14)

	testCases := []struct {
		Desc      string
		Query     string
		WantStart civil.Date
		WantEnd   civil.Date
	}{
		{Desc: "defaults to last seven days", Query: "", WantStart: date(2025, 3, 8), WantEnd: today},
		{Desc: "explicit range", Query: "?startDate=2025-03-01&endDate=2025-03-03", WantStart: date(2025, 3, 1), WantEnd: date(2025, 3, 3)},
		{Desc: "start only", Query: "?startDate=2025-03-01", WantStart: date(2025, 3, 1), WantEnd: date(2025, 3, 7)},
		{Desc: "end only", Query: "?endDate=2025-03-07", WantStart: date(2025, 3, 1), WantEnd: date(2025, 3, 7)},
	}

	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			fake := &fakeProgress{today: today}
			h := NewProgressHandler(fake)

			rr := httptest.NewRecorder()
			h.GetProgress(rr, newRequest(http.MethodGet, "/api/v1/progress"+tc.Query, "", nil))

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.WantStart, fake.start)
			assert.Equal(t, tc.WantEnd, fake.end)

			var summary progress.WeeklySummary
			decodeBody(t, rr, &summary)
			assert.Len(t, summary.Days, tc.WantEnd.DaysSince(tc.WantStart)+1)
		})
	}
}

func TestProgressHandler_BadInput(t *testing.T) {
	h := NewProgressHandler(&fakeProgress{today: date(2025, 3, 14)})

	for _, q := range []string{"?startDate=03/01/2025", "?endDate=tomorrow", "?startDate=2020-01-01&endDate=2025-01-01"} {
		rr := httptest.NewRecorder()
		h.GetProgress(rr, newRequest(http.MethodGet, "/api/v1/progress"+q, "", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestProgressHandler_InvertedRangeIsPassedThrough(t *testing.T) {
	fake := &fakeProgress{today: date(2025, 3, 14)}
	h := NewProgressHandler(fake)

	rr := httptest.NewRecorder()
	h.GetDailyProgress(rr, newRequest(http.MethodGet, "/api/v1/progress/daily?startDate=2025-03-05&endDate=2025-03-01", "", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestProgressHandler_UnknownUser(t *testing.T) {
	h := NewProgressHandler(&fakeProgress{today: date(2025, 3, 14), err: apperr.NotFound("user %s", testClerkID)})

	rr := httptest.NewRecorder()
	h.GetProgress(rr, newRequest(http.MethodGet, "/api/v1/progress", "", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProgressHandler_Monthly(t *testing.T) {
	fake := &fakeProgress{today: date(2025, 3, 14)}
	h := NewProgressHandler(fake)

	rr := httptest.NewRecorder()
	h.GetMonthlyProgress(rr, newRequest(http.MethodGet, "/api/v1/progress/month?month=2024-02", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, date(2024, 2, 1), fake.month)

	var days []progress.DayRecord
	decodeBody(t, rr, &days)
	assert.Len(t, days, 29)

	rr = httptest.NewRecorder()
	h.GetMonthlyProgress(rr, newRequest(http.MethodGet, "/api/v1/progress/month?month=2024-13", "", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProgressHandler_Weekly(t *testing.T) {
	fake := &fakeProgress{today: date(2025, 3, 14)}
	h := NewProgressHandler(fake)

	rr := httptest.NewRecorder()
	h.GetWeeklyProgress(rr, newRequest(http.MethodGet, "/api/v1/progress/week", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, date(2025, 3, 8), fake.start)
}
