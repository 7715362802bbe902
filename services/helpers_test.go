package services

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/require"
)

const (
	testClerkID = "user_2abc"
	testUserID  = "8f14e45f-ceea-467f-a0e6-8f3b5c2d1a90"
)

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// clockAt pins "now" to noon UTC on day.
func clockAt(day string) func() time.Time {
	d := date(day)
	return func() time.Time {
		return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
	}
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func expectUserLookup(mock pgxmock.PgxPoolIface) {
	mock.ExpectQuery("SELECT id FROM users WHERE clerk_id").
		WithArgs(testClerkID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(testUserID))
}
