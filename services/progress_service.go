package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/errgroup"

	"mindfuelAPI/internal/progress"
	"mindfuelAPI/internal/store"
)

// WeekLength is the size of the default progress window.
const WeekLength = 7

type ProgressService struct {
	db           store.DB
	defaultTasks int
	today        func() time.Time
}

func NewProgressService(db store.DB, defaultTasks int) *ProgressService {
	return &ProgressService{db: db, defaultTasks: defaultTasks, today: time.Now}
}

// Today is the calendar date the service treats as the current day.
func (s *ProgressService) Today() civil.Date {
	return civilToday(s.today)
}

// GetDailyProgress returns one record per day of [start, end] in ascending
// order. An inverted range yields an empty slice.
func (s *ProgressService) GetDailyProgress(ctx context.Context, clerkID string, start, end civil.Date) ([]progress.DayRecord, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return []progress.DayRecord{}, nil
	}
	return s.loadDays(ctx, userID, start, end)
}

// GetProgress summarizes [start, end] against the equally long range right
// before it. Both ranges are loaded concurrently.
func (s *ProgressService) GetProgress(ctx context.Context, clerkID string, start, end civil.Date) (*progress.WeeklySummary, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		summary := progress.Summarize(start, end, nil, nil)
		return &summary, nil
	}

	prevStart, prevEnd := progress.PreviousRange(start, end)

	var current, previous []progress.DayRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		days, err := s.loadDays(gctx, userID, start, end)
		current = days
		return err
	})
	g.Go(func() error {
		days, err := s.loadDays(gctx, userID, prevStart, prevEnd)
		previous = days
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := progress.Summarize(start, end, current, previous)
	return &summary, nil
}

// GetWeeklyProgress summarizes the last seven days ending today.
func (s *ProgressService) GetWeeklyProgress(ctx context.Context, clerkID string) (*progress.WeeklySummary, error) {
	start, end := progress.LastNDays(s.Today(), WeekLength)
	return s.GetProgress(ctx, clerkID, start, end)
}

// GetMonthlyProgress returns the daily records of the month containing month.
func (s *ProgressService) GetMonthlyProgress(ctx context.Context, clerkID string, month civil.Date) ([]progress.DayRecord, error) {
	start, end := progress.MonthRange(month)
	return s.GetDailyProgress(ctx, clerkID, start, end)
}

func (s *ProgressService) loadDays(ctx context.Context, userID string, start, end civil.Date) ([]progress.DayRecord, error) {
	cravings, err := s.cravingsByDate(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasksByDate(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return progress.BuildDaily(start, end, cravings, tasks, s.defaultTasks), nil
}

func (s *ProgressService) cravingsByDate(ctx context.Context, userID string, start, end civil.Date) (map[civil.Date]int, error) {
	query := `
	SELECT date, craving_intensity
	FROM daily_checkins
	WHERE user_id = $1 AND date BETWEEN $2 AND $3`

	rows, err := s.db.Query(ctx, query, userID, store.DateParam(start), store.DateParam(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	out := make(map[civil.Date]int)
	for rows.Next() {
		var (
			date      time.Time
			intensity int
		)
		if err := rows.Scan(&date, &intensity); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		out[store.DateOf(date)] = intensity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read check-ins: %w", err)
	}
	return out, nil
}

func (s *ProgressService) tasksByDate(ctx context.Context, userID string, start, end civil.Date) (map[civil.Date]progress.TaskTally, error) {
	query := `
	SELECT date, COUNT(*) FILTER (WHERE completed), COUNT(*)
	FROM user_tasks
	WHERE user_id = $1 AND date BETWEEN $2 AND $3
	GROUP BY date`

	rows, err := s.db.Query(ctx, query, userID, store.DateParam(start), store.DateParam(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query task completions: %w", err)
	}
	defer rows.Close()

	out := make(map[civil.Date]progress.TaskTally)
	for rows.Next() {
		var (
			date  time.Time
			tally progress.TaskTally
		)
		if err := rows.Scan(&date, &tally.Completed, &tally.Total); err != nil {
			return nil, fmt.Errorf("failed to scan task completion: %w", err)
		}
		out[store.DateOf(date)] = tally
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read task completions: %w", err)
	}
	return out, nil
}
