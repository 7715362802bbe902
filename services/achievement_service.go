package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"

	"mindfuelAPI/internal/achievement"
	"mindfuelAPI/internal/notification"
	"mindfuelAPI/internal/store"
)

type AchievementService struct {
	db       store.DB
	dispatch PushDispatcher
}

func NewAchievementService(db store.DB, dispatch PushDispatcher) *AchievementService {
	return &AchievementService{db: db, dispatch: dispatch}
}

// GetUserAchievements lists the whole catalog in id order with the user's
// unlock state joined in.
func (s *AchievementService) GetUserAchievements(ctx context.Context, clerkID string) ([]*achievement.AchievementWithStatus, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT a.id, a.title, a.description, a.icon, a.color, ua.unlocked_at
	FROM achievements a
	LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = $1
	ORDER BY a.id`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	out := []*achievement.AchievementWithStatus{}
	for rows.Next() {
		var a achievement.AchievementWithStatus
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Icon, &a.Color, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		a.Unlocked = a.UnlockedAt != nil
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read achievements: %w", err)
	}
	return out, nil
}

// Facts gathers the evidence the unlock rules need for one user.
func (s *AchievementService) Facts(ctx context.Context, userID string) (achievement.Facts, error) {
	var f achievement.Facts
	if err := s.db.QueryRow(ctx, `SELECT streak FROM users WHERE id = $1`, userID).Scan(&f.Streak); err != nil {
		return f, fmt.Errorf("failed to get streak: %w", err)
	}

	sugarFree, err := s.dates(ctx,
		`SELECT date FROM daily_checkins WHERE user_id = $1 AND craving_intensity <= $2 ORDER BY date`,
		userID, sugarFreeThreshold)
	if err != nil {
		return f, err
	}
	f.SugarFreeDates = sugarFree

	perfect, err := s.dates(ctx, `
	SELECT ut.date
	FROM user_tasks ut
	JOIN tasks t ON t.id = ut.task_id
	WHERE ut.user_id = $1 AND ut.completed
	GROUP BY ut.date, t.challenge_id
	HAVING COUNT(*) = (SELECT COUNT(*) FROM tasks WHERE challenge_id = t.challenge_id)
	ORDER BY ut.date`, userID)
	if err != nil {
		return f, err
	}
	f.PerfectTaskDates = perfect
	return f, nil
}

func (s *AchievementService) dates(ctx context.Context, query string, args ...any) ([]civil.Date, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dates: %w", err)
	}
	defer rows.Close()

	var out []civil.Date
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		out = append(out, store.DateOf(d))
	}
	return out, rows.Err()
}

// EvaluateUser unlocks every achievement whose rule the user now meets and
// returns the ones that were not unlocked before.
func (s *AchievementService) EvaluateUser(ctx context.Context, userID string) ([]achievement.Achievement, error) {
	facts, err := s.Facts(ctx, userID)
	if err != nil {
		return nil, err
	}
	titles := achievement.Evaluate(facts)
	if len(titles) == 0 {
		return nil, nil
	}

	query := `
	WITH ins AS (
		INSERT INTO user_achievements (user_id, achievement_id)
		SELECT $1, id FROM achievements WHERE title = ANY($2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
		RETURNING achievement_id
	)
	SELECT a.id, a.title, a.description, a.icon, a.color
	FROM achievements a
	JOIN ins ON ins.achievement_id = a.id
	ORDER BY a.id`

	rows, err := s.db.Query(ctx, query, userID, titles)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock achievements: %w", err)
	}
	defer rows.Close()

	var unlocked []achievement.Achievement
	for rows.Next() {
		var a achievement.Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Icon, &a.Color); err != nil {
			return nil, fmt.Errorf("failed to scan unlocked achievement: %w", err)
		}
		unlocked = append(unlocked, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, a := range unlocked {
		slog.InfoContext(ctx, "achievement unlocked", "user_id", userID, "achievement", a.Title)
		if s.dispatch != nil {
			s.dispatch.Dispatch(userID, notification.Push{
				Kind:  notification.KindAchievement,
				Title: "Achievement unlocked: " + a.Title,
				Body:  a.Description,
				Data:  map[string]any{"achievementId": a.ID},
			})
		}
	}
	return unlocked, nil
}

// EvaluateAll runs EvaluateUser for every user. A failure for one user is
// logged and does not stop the run.
func (s *AchievementService) EvaluateAll(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	total := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		unlocked, err := s.EvaluateUser(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "achievement evaluation failed", "user_id", id, "error", err)
			continue
		}
		total += len(unlocked)
	}
	return total, nil
}
