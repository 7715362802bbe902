package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/checkin"
	"mindfuelAPI/internal/store"
)

type CheckinService struct {
	db    store.DB
	today func() time.Time
}

func NewCheckinService(db store.DB) *CheckinService {
	return &CheckinService{db: db, today: time.Now}
}

// CreateCheckin upserts the check-in for the requested day (today when
// omitted). Only the first check-in of a day moves the streak and awards
// points; later ones overwrite mood and intensity.
func (s *CheckinService) CreateCheckin(ctx context.Context, clerkID string, req *checkin.CreateCheckinRequest) (*checkin.DailyCheckin, error) {
	day := civilToday(s.today)
	if req.Date != "" {
		d, err := civil.ParseDate(req.Date)
		if err != nil {
			return nil, apperr.InvalidArgument("date %q is not YYYY-MM-DD", req.Date)
		}
		day = d
	}
	if req.CravingIntensity == nil {
		return nil, apperr.InvalidArgument("cravingIntensity is required")
	}

	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	c := &checkin.DailyCheckin{
		UserID:           userID,
		Date:             day,
		Mood:             req.Mood,
		CravingIntensity: *req.CravingIntensity,
		Notes:            req.Notes,
	}

	err = store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var (
			streak int
			last   *time.Time
		)
		if err := tx.QueryRow(ctx, `SELECT streak, last_checkin_date FROM users WHERE id = $1 FOR UPDATE`, userID).
			Scan(&streak, &last); err != nil {
			return apperr.FromPg("failed to lock user", err)
		}

		upsert := `
		INSERT INTO daily_checkins (user_id, date, mood, craving_intensity, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE SET
			mood = EXCLUDED.mood,
			craving_intensity = EXCLUDED.craving_intensity,
			notes = EXCLUDED.notes
		RETURNING id, created_at, (xmax = 0)`

		var inserted bool
		err := tx.QueryRow(ctx, upsert, userID, store.DateParam(day), string(c.Mood), c.CravingIntensity, c.Notes).
			Scan(&c.ID, &c.CreatedAt, &inserted)
		if err != nil {
			return fmt.Errorf("failed to upsert check-in: %w", err)
		}
		if !inserted {
			return nil
		}

		lastDate := store.NullDate(last)
		if lastDate == nil || day.After(*lastDate) {
			streak = checkin.NextStreak(streak, lastDate, day)
			lastDate = &day
		}

		award := `
		UPDATE users SET
			streak = $2,
			points = points + $3,
			last_checkin_date = $4,
			updated_at = NOW()
		WHERE id = $1`
		if _, err := tx.Exec(ctx, award, userID, streak, checkin.PointsPerCheckin, store.DateParam(*lastDate)); err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCheckins returns the user's check-ins in [start, end], oldest first.
func (s *CheckinService) ListCheckins(ctx context.Context, clerkID string, start, end civil.Date) ([]*checkin.DailyCheckin, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, date, mood, craving_intensity, notes, created_at
	FROM daily_checkins
	WHERE user_id = $1 AND date BETWEEN $2 AND $3
	ORDER BY date`

	rows, err := s.db.Query(ctx, query, userID, store.DateParam(start), store.DateParam(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	out := []*checkin.DailyCheckin{}
	for rows.Next() {
		c := checkin.DailyCheckin{UserID: userID}
		var (
			day  time.Time
			mood string
		)
		if err := rows.Scan(&c.ID, &day, &mood, &c.CravingIntensity, &c.Notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		c.Date = store.DateOf(day)
		c.Mood = checkin.Mood(mood)
		out = append(out, &c)
	}
	return out, rows.Err()
}
