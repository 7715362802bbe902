package apperr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"mindfuelAPI/internal/apperr"
)

func TestFromPg(t *testing.T) {
	testCases := []struct {
		Desc   string
		Err    error
		Target error
	}{
		{Desc: "no rows", Err: pgx.ErrNoRows, Target: apperr.ErrNotFound},
		{Desc: "unique violation", Err: &pgconn.PgError{Code: "23505"}, Target: apperr.ErrConflict},
		{Desc: "fk violation", Err: &pgconn.PgError{Code: "23503"}, Target: apperr.ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			err := apperr.FromPg("load", tc.Err)
			assert.ErrorIs(t, err, tc.Target)
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("connection reset")
		err := apperr.FromPg("load", boom)
		assert.ErrorIs(t, err, boom)
		assert.False(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, apperr.FromPg("load", nil))
	})
}

func TestConstructorsWrapSentinels(t *testing.T) {
	assert.ErrorIs(t, apperr.NotFound("task %d", 7), apperr.ErrNotFound)
	assert.ErrorIs(t, apperr.InvalidArgument("bad date"), apperr.ErrInvalidArgument)
	assert.ErrorIs(t, apperr.Conflict("active challenge"), apperr.ErrConflict)
	assert.ErrorIs(t, apperr.Upstream("coach"), apperr.ErrUpstreamUnavailable)
	assert.EqualError(t, apperr.NotFound("task %d", 7), "task 7: not found")
}
