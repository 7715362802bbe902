package services

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/checkin"
	"mindfuelAPI/internal/store"
)

func intPtr(v int) *int { return &v }

func lastCheckin(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := store.DateParam(date(s))
	return &t
}

func TestCheckinService_CreateCheckin(t *testing.T) {
	created := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		Desc       string
		Date       string
		Streak     int
		Last       string
		Inserted   bool
		WantStreak int
		WantLast   string
	}{
		{Desc: "first ever check-in", Streak: 0, Inserted: true, WantStreak: 1, WantLast: "2024-03-08"},
		{Desc: "continues yesterday", Streak: 4, Last: "2024-03-07", Inserted: true, WantStreak: 5, WantLast: "2024-03-08"},
		{Desc: "gap resets streak", Streak: 4, Last: "2024-03-05", Inserted: true, WantStreak: 1, WantLast: "2024-03-08"},
		{Desc: "backfilled day keeps streak", Date: "2024-03-01", Streak: 4, Last: "2024-03-07", Inserted: true, WantStreak: 4, WantLast: "2024-03-07"},
		{Desc: "second check-in of the day", Streak: 4, Last: "2024-03-08", Inserted: false},
	}

	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			mock := newMock(t)
			svc := NewCheckinService(mock)
			svc.today = clockAt("2024-03-08")

			day := "2024-03-08"
			if tc.Date != "" {
				day = tc.Date
			}

			expectUserLookup(mock)
			mock.ExpectBegin()
			mock.ExpectQuery("SELECT streak, last_checkin_date FROM users").WithArgs(testUserID).
				WillReturnRows(pgxmock.NewRows([]string{"streak", "last_checkin_date"}).AddRow(tc.Streak, lastCheckin(tc.Last)))
			mock.ExpectQuery("INSERT INTO daily_checkins").
				WithArgs(testUserID, store.DateParam(date(day)), "good", 2, (*string)(nil)).
				WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow(int64(11), created, tc.Inserted))
			if tc.Inserted {
				mock.ExpectExec("UPDATE users SET").
					WithArgs(testUserID, tc.WantStreak, 10, store.DateParam(date(tc.WantLast))).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			}
			mock.ExpectCommit()

			c, err := svc.CreateCheckin(context.Background(), testClerkID, &checkin.CreateCheckinRequest{
				Date:             tc.Date,
				Mood:             checkin.MoodGood,
				CravingIntensity: intPtr(2),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(11), c.ID)
			assert.Equal(t, date(day), c.Date)
			assert.Equal(t, created, c.CreatedAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCheckinService_CreateCheckin_BadDate(t *testing.T) {
	mock := newMock(t)
	svc := NewCheckinService(mock)

	_, err := svc.CreateCheckin(context.Background(), testClerkID, &checkin.CreateCheckinRequest{
		Date:             "03/08/2024",
		Mood:             checkin.MoodGood,
		CravingIntensity: intPtr(2),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckinService_ListCheckins(t *testing.T) {
	mock := newMock(t)
	svc := NewCheckinService(mock)
	note := "party"
	created := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	expectUserLookup(mock)
	mock.ExpectQuery("FROM daily_checkins").
		WithArgs(testUserID, store.DateParam(date("2024-03-01")), store.DateParam(date("2024-03-08"))).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "mood", "craving_intensity", "notes", "created_at"}).
			AddRow(int64(1), store.DateParam(date("2024-03-02")), "rough", 8, &note, created).
			AddRow(int64(2), store.DateParam(date("2024-03-03")), "great", 1, (*string)(nil), created))

	got, err := svc.ListCheckins(context.Background(), testClerkID, date("2024-03-01"), date("2024-03-08"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, checkin.MoodRough, got[0].Mood)
	assert.Equal(t, "party", *got[0].Notes)
	assert.Equal(t, date("2024-03-03"), got[1].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}
