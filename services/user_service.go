package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/cache"
	"mindfuelAPI/internal/leaderboard"
	"mindfuelAPI/internal/progress"
	"mindfuelAPI/internal/stats"
	"mindfuelAPI/internal/store"
	"mindfuelAPI/internal/user"
)

const (
	leaderboardCacheKey = "leaderboard:top"
	leaderboardCacheTTL = 60 * time.Second
)

const userColumns = `id, clerk_id, email, username, name, image_url, streak, points,
	last_checkin_date, subscription_status, subscription_expires_at, created_at, updated_at`

type UserService struct {
	db    store.DB
	cache cache.Cache
	today func() time.Time
}

func NewUserService(db store.DB, c cache.Cache) *UserService {
	if c == nil {
		c = cache.Noop{}
	}
	return &UserService{db: db, cache: c, today: time.Now}
}

// userIDByClerk resolves the internal user id for an authenticated Clerk id.
func userIDByClerk(ctx context.Context, q store.Querier, clerkID string) (string, error) {
	var userID string
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("user %s", clerkID)
		}
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u           user.User
		lastCheckin *time.Time
	)
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.Name,
		&u.ImageURL,
		&u.Streak,
		&u.Points,
		&lastCheckin,
		&u.SubscriptionStatus,
		&u.SubscriptionExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.LastCheckinDate = store.NullDate(lastCheckin)
	return &u, nil
}

// CreateUser inserts a user or refreshes the profile fields of an existing
// one with the same Clerk id. Clerk may redeliver user.created.
func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	query := `
	INSERT INTO users (id, clerk_id, email, username, name, image_url)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (clerk_id) DO UPDATE SET
		email = EXCLUDED.email,
		username = EXCLUDED.username,
		name = EXCLUDED.name,
		image_url = EXCLUDED.image_url,
		updated_at = NOW()
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query,
		uuid.New().String(),
		req.ClerkID,
		req.Email,
		req.Username,
		req.Name,
		req.ImageURL,
	))
	if err != nil {
		return nil, apperr.FromPg("failed to create user", err)
	}
	s.invalidateLeaderboard(ctx)
	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user %s", clerkID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UpdateProfileByClerkID applies the non-empty fields of req.
func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users SET
		username = COALESCE(NULLIF($2, ''), username),
		name = COALESCE(NULLIF($3, ''), name),
		image_url = COALESCE(NULLIF($4, ''), image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID, req.Username, req.Name, req.ImageURL))
	if err != nil {
		return nil, apperr.FromPg("failed to update user", err)
	}
	s.invalidateLeaderboard(ctx)
	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user %s", clerkID)
	}
	s.invalidateLeaderboard(ctx)
	return nil
}

func (s *UserService) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	query := `
	SELECT
		u.streak,
		u.points,
		(SELECT MIN(date) FROM daily_checkins WHERE user_id = u.id),
		(SELECT COUNT(*) FROM user_tasks WHERE user_id = u.id AND completed),
		(SELECT COUNT(*) FROM daily_checkins WHERE user_id = u.id AND craving_intensity <= $2),
		(SELECT COALESCE(AVG(craving_intensity), 0)::float8 FROM daily_checkins WHERE user_id = u.id)
	FROM users u
	WHERE u.clerk_id = $1`

	var (
		st    stats.UserStats
		first *time.Time
	)
	err := s.db.QueryRow(ctx, query, clerkID, sugarFreeThreshold).Scan(
		&st.CurrentStreak,
		&st.Points,
		&first,
		&st.CompletedTasks,
		&st.SugarFreeDays,
		&st.AverageCraving,
	)
	if err != nil {
		return nil, apperr.FromPg("failed to get user stats", err)
	}

	st.TotalDays = stats.TotalDays(store.NullDate(first), civilToday(s.today))
	st.AverageCraving = progress.Round1(st.AverageCraving)
	return &st, nil
}

// GetTopLeaderboard ranks users by points. The result is cached briefly
// since every client polls it.
func (s *UserService) GetTopLeaderboard(ctx context.Context) (*leaderboard.Leaderboard, error) {
	var cached leaderboard.Leaderboard
	if found, err := s.cache.GetJSON(ctx, leaderboardCacheKey, &cached); err != nil {
		slog.WarnContext(ctx, "leaderboard cache read failed", "error", err)
	} else if found {
		return &cached, nil
	}

	query := `
	SELECT id, username, name, image_url, points, streak,
		RANK() OVER (ORDER BY points DESC)::int AS rank,
		COUNT(*) OVER ()::int AS total
	FROM users
	ORDER BY points DESC, created_at
	LIMIT $1`

	rows, err := s.db.Query(ctx, query, leaderboard.TopSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	board := &leaderboard.Leaderboard{Entries: []*leaderboard.LeaderboardEntry{}}
	for rows.Next() {
		var e leaderboard.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Name, &e.ImageURL, &e.Points, &e.Streak, &e.Rank, &board.TotalUsers); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		board.Entries = append(board.Entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	if err := s.cache.SetJSON(ctx, leaderboardCacheKey, board, leaderboardCacheTTL); err != nil {
		slog.WarnContext(ctx, "leaderboard cache write failed", "error", err)
	}
	return board, nil
}

// GetUserRank returns the caller's own leaderboard entry. Users tied on
// points share a rank.
func (s *UserService) GetUserRank(ctx context.Context, clerkID string) (*leaderboard.LeaderboardEntry, error) {
	query := `
	SELECT u.id, u.username, u.name, u.image_url, u.points, u.streak,
		(SELECT COUNT(*) FROM users o WHERE o.points > u.points)::int + 1
	FROM users u
	WHERE u.clerk_id = $1`

	var e leaderboard.LeaderboardEntry
	err := s.db.QueryRow(ctx, query, clerkID).Scan(&e.UserID, &e.Username, &e.Name, &e.ImageURL, &e.Points, &e.Streak, &e.Rank)
	if err != nil {
		return nil, apperr.FromPg("failed to get user rank", err)
	}
	return &e, nil
}

func (s *UserService) invalidateLeaderboard(ctx context.Context) {
	if err := s.cache.Delete(ctx, leaderboardCacheKey); err != nil {
		slog.WarnContext(ctx, "leaderboard cache invalidation failed", "error", err)
	}
}
