package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("permission denied"))

	err = Migrate(context.Background(), mock)
	assert.ErrorContains(t, err, "migrate statement 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_SkipsWhenCatalogExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	seeded, err := Seed(context.Background(), mock)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_InsertsCatalog(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for i, c := range seedChallenges {
		mock.ExpectQuery("INSERT INTO challenges").
			WithArgs(c.title, c.description, c.duration, c.category, c.difficulty).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(i + 1)))
		for pos, task := range c.tasks {
			mock.ExpectExec("INSERT INTO tasks").
				WithArgs(int64(i+1), task[0], task[1], pos).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
	}
	for _, tip := range seedTips {
		mock.ExpectExec("INSERT INTO health_tips").
			WithArgs(tip[0], tip[1], tip[2], tip[3], tip[4]).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for _, a := range seedAchievements {
		mock.ExpectExec("INSERT INTO achievements").
			WithArgs(a[0], a[1], a[2], a[3]).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	seeded, err := Seed(context.Background(), mock)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
