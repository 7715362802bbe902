package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/user"
)

// memCache is an in-process cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

var userCols = []string{
	"id", "clerk_id", "email", "username", "name", "image_url", "streak", "points",
	"last_checkin_date", "subscription_status", "subscription_expires_at", "created_at", "updated_at",
}

func userRow(username string, last *time.Time) *pgxmock.Rows {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(userCols).AddRow(
		testUserID, testClerkID, "ana@example.com", username, "Ana", "", 3, 120,
		last, "none", (*time.Time)(nil), now, now,
	)
}

func TestUserService_CreateUser(t *testing.T) {
	mock := newMock(t)
	c := newMemCache()
	c.data[leaderboardCacheKey] = []byte(`{}`)
	svc := NewUserService(mock, c)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), testClerkID, "ana@example.com", "ana", "Ana", "").
		WillReturnRows(userRow("ana", nil))

	u, err := svc.CreateUser(context.Background(), &user.CreateUserRequest{
		ClerkID:  testClerkID,
		Email:    "ana@example.com",
		Username: "ana",
		Name:     "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, testUserID, u.ID)
	assert.Nil(t, u.LastCheckinDate)
	assert.NotContains(t, c.data, leaderboardCacheKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetUserByClerkID(t *testing.T) {
	mock := newMock(t)
	svc := NewUserService(mock, nil)
	last := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM users WHERE clerk_id").WithArgs(testClerkID).WillReturnRows(userRow("ana", &last))

	u, err := svc.GetUserByClerkID(context.Background(), testClerkID)
	require.NoError(t, err)
	require.NotNil(t, u.LastCheckinDate)
	assert.Equal(t, date("2024-03-07"), *u.LastCheckinDate)

	mock.ExpectQuery("FROM users WHERE clerk_id").WithArgs("nobody").WillReturnError(pgx.ErrNoRows)
	_, err = svc.GetUserByClerkID(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_DeleteUserByClerkID(t *testing.T) {
	mock := newMock(t)
	svc := NewUserService(mock, nil)

	mock.ExpectExec("DELETE FROM users").WithArgs(testClerkID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, svc.DeleteUserByClerkID(context.Background(), testClerkID))

	mock.ExpectExec("DELETE FROM users").WithArgs(testClerkID).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, svc.DeleteUserByClerkID(context.Background(), testClerkID), apperr.ErrNotFound)
}

func TestUserService_GetUserStats(t *testing.T) {
	mock := newMock(t)
	svc := NewUserService(mock, nil)
	svc.today = clockAt("2024-03-10")
	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM users u").WithArgs(testClerkID, 3).
		WillReturnRows(pgxmock.NewRows([]string{"streak", "points", "first", "tasks", "sugar_free", "avg"}).
			AddRow(4, 85, &first, 12, 6, 3.4285714))

	st, err := svc.GetUserStats(context.Background(), testClerkID)
	require.NoError(t, err)
	assert.Equal(t, 10, st.TotalDays)
	assert.Equal(t, 12, st.CompletedTasks)
	assert.Equal(t, 6, st.SugarFreeDays)
	assert.Equal(t, 3.4, st.AverageCraving)
	assert.Equal(t, 4, st.CurrentStreak)
	assert.Equal(t, 85, st.Points)
}

func TestUserService_GetTopLeaderboard_Caches(t *testing.T) {
	mock := newMock(t)
	svc := NewUserService(mock, newMemCache())

	mock.ExpectQuery("RANK\\(\\) OVER").WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "name", "image_url", "points", "streak", "rank", "total"}).
			AddRow("u1", "ana", "Ana", "", 300, 9, 1, 42).
			AddRow("u2", "bo", "Bo", "", 300, 2, 1, 42).
			AddRow("u3", "cy", "Cy", "", 120, 1, 3, 42))

	board, err := svc.GetTopLeaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, 42, board.TotalUsers)
	assert.Equal(t, 1, board.Entries[1].Rank)
	assert.Equal(t, 3, board.Entries[2].Rank)

	again, err := svc.GetTopLeaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetUserRank(t *testing.T) {
	mock := newMock(t)
	svc := NewUserService(mock, nil)

	mock.ExpectQuery("o.points > u.points").WithArgs(testClerkID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "name", "image_url", "points", "streak", "rank"}).
			AddRow(testUserID, "ana", "Ana", "", 120, 3, 5))

	e, err := svc.GetUserRank(context.Background(), testClerkID)
	require.NoError(t, err)
	assert.Equal(t, 5, e.Rank)
	assert.Equal(t, 120, e.Points)
}
