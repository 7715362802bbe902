package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuelAPI/internal/store"
)

func TestWithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	testCases := []struct {
		Desc            string
		Fn              func(tx pgx.Tx) error
		Error           error
		MockPrepareFunc func()
	}{
		{
			Desc: "commits on success",
			Fn: func(tx pgx.Tx) error {
				_, err := tx.Exec(context.Background(), "UPDATE users SET points = points + 1")
				return err
			},
			MockPrepareFunc: func() {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE users").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
		},
		{
			Desc:  "rolls back on error",
			Fn:    func(tx pgx.Tx) error { return errors.New("boom") },
			Error: errors.New("boom"),
			MockPrepareFunc: func() {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepareFunc()
			err := store.WithTx(context.Background(), mock, tc.Fn)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 3, Day: 10}
	p := store.DateParam(d)
	assert.Equal(t, time.UTC, p.Location())
	assert.Equal(t, d, store.DateOf(p))

	// A DATE scanned with a non-UTC location keeps its calendar fields.
	loc := time.FixedZone("UTC-8", -8*3600)
	assert.Equal(t, d, store.DateOf(time.Date(2024, 3, 10, 0, 0, 0, 0, loc)))
}
