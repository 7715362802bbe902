package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/challenge"
	"mindfuelAPI/internal/checkin"
	"mindfuelAPI/internal/notification"
	"mindfuelAPI/internal/store"
)

const userChallengeColumns = `uc.id, uc.user_id, uc.challenge_id, uc.start_date, uc.current_day,
	uc.completion_percentage, uc.is_completed, uc.completed_at,
	c.id, c.title, c.description, c.duration, c.category, c.difficulty`

// PushDispatcher queues a push for asynchronous delivery.
type PushDispatcher interface {
	Dispatch(userID string, push notification.Push) bool
}

type ChallengeService struct {
	db       store.DB
	today    func() time.Time
	dispatch PushDispatcher
}

func NewChallengeService(db store.DB) *ChallengeService {
	return &ChallengeService{db: db, today: time.Now}
}

// SetDispatcher enables the push sent when a challenge is completed.
func (s *ChallengeService) SetDispatcher(d PushDispatcher) {
	s.dispatch = d
}

func scanUserChallenge(row pgx.Row) (*challenge.UserChallenge, error) {
	var (
		uc    challenge.UserChallenge
		c     challenge.Challenge
		start time.Time
	)
	err := row.Scan(
		&uc.ID,
		&uc.UserID,
		&uc.ChallengeID,
		&start,
		&uc.CurrentDay,
		&uc.CompletionPercentage,
		&uc.IsCompleted,
		&uc.CompletedAt,
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Duration,
		&c.Category,
		&c.Difficulty,
	)
	if err != nil {
		return nil, err
	}
	uc.StartDate = store.DateOf(start)
	uc.Challenge = &c
	return &uc, nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context) ([]*challenge.Challenge, error) {
	query := `SELECT id, title, description, duration, category, difficulty FROM challenges ORDER BY id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	out := []*challenge.Challenge{}
	for rows.Next() {
		var c challenge.Challenge
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Duration, &c.Category, &c.Difficulty); err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetCurrentChallenge returns the user's active challenge with currentDay
// and completionPercentage brought up to date, or nil when the user has none.
func (s *ChallengeService) GetCurrentChallenge(ctx context.Context, clerkID string) (*challenge.UserChallenge, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	uc, err := s.activeChallenge(ctx, s.db, userID)
	if err != nil || uc == nil {
		return nil, err
	}

	today := civilToday(s.today)
	done, total, err := tallyTasks(ctx, s.db, userID, uc.ChallengeID, today)
	if err != nil {
		return nil, err
	}

	day, pct := uc.CurrentDay, uc.CompletionPercentage
	uc.Refresh(today, uc.Challenge.Duration)
	uc.CompletionPercentage = challenge.CompletionPercentage(uc.CurrentDay, uc.Challenge.Duration, done, total)
	if uc.CurrentDay != day || uc.CompletionPercentage != pct {
		update := `UPDATE user_challenges SET current_day = $2, completion_percentage = $3 WHERE id = $1`
		if _, err := s.db.Exec(ctx, update, uc.ID, uc.CurrentDay, uc.CompletionPercentage); err != nil {
			// The derived values are returned either way; persisting them is best effort.
			slog.WarnContext(ctx, "failed to persist challenge progress", "user_challenge_id", uc.ID, "error", err)
		}
	}
	return uc, nil
}

// tallyTasks counts the challenge tasks the user completed on day and the
// size of the challenge's task catalog.
func tallyTasks(ctx context.Context, q store.Querier, userID string, challengeID int64, day civil.Date) (done, total int, err error) {
	query := `
	SELECT
		(SELECT COUNT(*) FROM user_tasks ut JOIN tasks t ON t.id = ut.task_id
			WHERE ut.user_id = $1 AND ut.date = $3 AND t.challenge_id = $2 AND ut.completed),
		(SELECT COUNT(*) FROM tasks WHERE challenge_id = $2)`
	if err := q.QueryRow(ctx, query, userID, challengeID, store.DateParam(day)).Scan(&done, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return done, total, nil
}

func (s *ChallengeService) activeChallenge(ctx context.Context, q store.Querier, userID string) (*challenge.UserChallenge, error) {
	query := `
	SELECT ` + userChallengeColumns + `
	FROM user_challenges uc
	JOIN challenges c ON c.id = uc.challenge_id
	WHERE uc.user_id = $1 AND NOT uc.is_completed`

	uc, err := scanUserChallenge(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active challenge: %w", err)
	}
	return uc, nil
}

func (s *ChallengeService) GetCompletedChallenges(ctx context.Context, clerkID string) ([]*challenge.UserChallenge, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT ` + userChallengeColumns + `
	FROM user_challenges uc
	JOIN challenges c ON c.id = uc.challenge_id
	WHERE uc.user_id = $1 AND uc.is_completed
	ORDER BY uc.completed_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed challenges: %w", err)
	}
	defer rows.Close()

	out := []*challenge.UserChallenge{}
	for rows.Next() {
		uc, err := scanUserChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completed challenge: %w", err)
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}

// GetCurrentDay is GetCurrentChallenge for callers that require one.
func (s *ChallengeService) GetCurrentDay(ctx context.Context, clerkID string) (*challenge.DayView, error) {
	uc, err := s.GetCurrentChallenge(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if uc == nil {
		return nil, apperr.NotFound("no active challenge")
	}
	return &challenge.DayView{Day: uc.CurrentDay, Challenge: uc}, nil
}

// StartChallenge enrols the user in a catalog challenge starting today.
// A user can run one challenge at a time.
func (s *ChallengeService) StartChallenge(ctx context.Context, clerkID string, challengeID int64) (*challenge.UserChallenge, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var c challenge.Challenge
	err = s.db.QueryRow(ctx,
		`SELECT id, title, description, duration, category, difficulty FROM challenges WHERE id = $1`,
		challengeID,
	).Scan(&c.ID, &c.Title, &c.Description, &c.Duration, &c.Category, &c.Difficulty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("challenge %d", challengeID)
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	uc := &challenge.UserChallenge{
		UserID:      userID,
		ChallengeID: challengeID,
		StartDate:   civilToday(s.today),
		CurrentDay:  1,
		Challenge:   &c,
	}

	query := `
	INSERT INTO user_challenges (user_id, challenge_id, start_date, current_day, completion_percentage)
	VALUES ($1, $2, $3, 1, 0)
	RETURNING id`

	err = s.db.QueryRow(ctx, query, userID, challengeID, store.DateParam(uc.StartDate)).Scan(&uc.ID)
	if err != nil {
		err = apperr.FromPg("failed to start challenge", err)
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("user already has an active challenge")
		}
		return nil, err
	}

	slog.InfoContext(ctx, "challenge started", "user_id", userID, "challenge_id", challengeID)
	return uc, nil
}

// GetTodayTasks lists the active challenge's tasks with today's completion
// state. Users without an active challenge get an empty list.
func (s *ChallengeService) GetTodayTasks(ctx context.Context, clerkID string) ([]*challenge.TaskView, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	uc, err := s.activeChallenge(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if uc == nil {
		return []*challenge.TaskView{}, nil
	}

	today := civilToday(s.today)
	query := `
	SELECT t.id, t.challenge_id, t.title, t.description, t.position, COALESCE(ut.completed, FALSE)
	FROM tasks t
	LEFT JOIN user_tasks ut ON ut.task_id = t.id AND ut.user_id = $1 AND ut.date = $3
	WHERE t.challenge_id = $2
	ORDER BY t.position, t.id`

	rows, err := s.db.Query(ctx, query, userID, uc.ChallengeID, store.DateParam(today))
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	out := []*challenge.TaskView{}
	for rows.Next() {
		tv := challenge.TaskView{Date: today}
		if err := rows.Scan(&tv.ID, &tv.ChallengeID, &tv.Title, &tv.Description, &tv.Position, &tv.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, &tv)
	}
	return out, rows.Err()
}

// UpdateTaskCompletion records today's completion flag for a task of the
// user's active challenge and recomputes the challenge's progress in the
// same transaction. The first false to true transition of the day awards
// points.
func (s *ChallengeService) UpdateTaskCompletion(ctx context.Context, clerkID string, taskID int64, completed bool) (*challenge.TaskView, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	today := civilToday(s.today)
	tv := &challenge.TaskView{Date: today, Completed: completed}
	var finished bool

	err = store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var (
			userChallengeID int64
			start           time.Time
			duration        int
		)
		lookup := `
		SELECT t.id, t.challenge_id, t.title, t.description, t.position,
			uc.id, uc.start_date, c.duration
		FROM tasks t
		JOIN user_challenges uc ON uc.challenge_id = t.challenge_id
			AND uc.user_id = $1 AND NOT uc.is_completed
		JOIN challenges c ON c.id = t.challenge_id
		WHERE t.id = $2
		FOR UPDATE OF uc`

		err := tx.QueryRow(ctx, lookup, userID, taskID).Scan(
			&tv.ID, &tv.ChallengeID, &tv.Title, &tv.Description, &tv.Position,
			&userChallengeID, &start, &duration,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("task %d in active challenge", taskID)
			}
			return fmt.Errorf("failed to look up task: %w", err)
		}

		upsert := `
		WITH prev AS (
			SELECT completed FROM user_tasks WHERE user_id = $1 AND task_id = $2 AND date = $3
		)
		INSERT INTO user_tasks (user_id, task_id, date, completed, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, task_id, date) DO UPDATE SET
			completed = EXCLUDED.completed,
			updated_at = NOW()
		RETURNING (SELECT completed FROM prev)`

		var previous *bool
		if err := tx.QueryRow(ctx, upsert, userID, taskID, store.DateParam(today), completed).Scan(&previous); err != nil {
			return fmt.Errorf("failed to upsert task completion: %w", err)
		}

		done, total, err := tallyTasks(ctx, tx, userID, tv.ChallengeID, today)
		if err != nil {
			return err
		}

		day := challenge.CurrentDay(store.DateOf(start), today, duration)
		pct := challenge.CompletionPercentage(day, duration, done, total)
		finished = challenge.Finished(pct)

		update := `
		UPDATE user_challenges SET
			current_day = $2,
			completion_percentage = $3,
			is_completed = $4,
			completed_at = CASE WHEN $4 THEN NOW() ELSE NULL END
		WHERE id = $1`
		if _, err := tx.Exec(ctx, update, userChallengeID, day, pct, finished); err != nil {
			return fmt.Errorf("failed to update challenge progress: %w", err)
		}

		if completed && (previous == nil || !*previous) {
			if _, err := tx.Exec(ctx, `UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1`,
				userID, checkin.PointsPerTaskComplete); err != nil {
				return fmt.Errorf("failed to award points: %w", err)
			}
		}

		if finished {
			slog.InfoContext(ctx, "challenge completed", "user_id", userID, "user_challenge_id", userChallengeID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if finished && s.dispatch != nil {
		s.dispatch.Dispatch(userID, notification.Push{
			Kind:  notification.KindChallengeDone,
			Title: "Challenge complete",
			Body:  "You finished your challenge. Time to pick the next one!",
			Data:  map[string]any{"challengeId": tv.ChallengeID},
		})
	}
	return tv, nil
}

