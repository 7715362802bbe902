package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mindfuelAPI/internal/notification"
	"mindfuelAPI/internal/store"
)

const (
	dispatchQueueSize   = 100
	dispatchTimeout     = 10 * time.Second
	dispatchEnqueueWait = 5 * time.Second
)

type dispatchJob struct {
	userID string
	push   notification.Push
}

// NotificationService stores device tokens and delivers pushes. Dispatch
// hands a push to a fixed pool of workers so callers never wait on FCM.
type NotificationService struct {
	db       store.DB
	provider notification.PushProvider
	workers  int

	jobs chan dispatchJob
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	today func() time.Time
}

// NewNotificationService builds the service. A nil provider disables
// delivery; pushes are logged and dropped.
func NewNotificationService(db store.DB, provider notification.PushProvider, workers int) *NotificationService {
	if workers <= 0 {
		workers = 1
	}
	return &NotificationService{
		db:       db,
		provider: provider,
		workers:  workers,
		jobs:     make(chan dispatchJob, dispatchQueueSize),
		stop:     make(chan struct{}),
		today:    time.Now,
	}
}

func (s *NotificationService) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Stop signals the workers and waits for them to deliver everything queued
// before the call.
func (s *NotificationService) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *NotificationService) worker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobs:
			s.deliver(job)
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *NotificationService) drain() {
	for {
		select {
		case job := <-s.jobs:
			s.deliver(job)
		default:
			return
		}
	}
}

func (s *NotificationService) deliver(job dispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	if err := s.Send(ctx, job.userID, job.push); err != nil {
		slog.Error("push dispatch failed", "user_id", job.userID, "kind", job.push.Kind, "error", err)
	}
}

// Dispatch queues push for userID. It reports false when the queue stays
// full for too long.
func (s *NotificationService) Dispatch(userID string, push notification.Push) bool {
	select {
	case s.jobs <- dispatchJob{userID: userID, push: push}:
		return true
	case <-time.After(dispatchEnqueueWait):
		slog.Warn("push queue full, dropping", "user_id", userID, "kind", push.Kind)
		return false
	}
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO device_tokens (user_id, token, platform)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, token) DO UPDATE SET
		platform = EXCLUDED.platform,
		last_used = NOW()`

	if _, err := s.db.Exec(ctx, query, userID, req.Token, req.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) DeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx,
		`SELECT token, platform, added_at, last_used FROM device_tokens WHERE user_id = $1 ORDER BY last_used DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform, &t.AddedAt, &t.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// Send delivers push to every registered device of userID right away.
func (s *NotificationService) Send(ctx context.Context, userID string, push notification.Push) error {
	if s.provider == nil {
		slog.InfoContext(ctx, "push provider not configured, skipping", "user_id", userID, "kind", push.Kind)
		return nil
	}

	tokens, err := s.DeviceTokens(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	data := map[string]any{"kind": string(push.Kind)}
	for k, v := range push.Data {
		data[k] = v
	}
	return s.provider.SendPush(ctx, tokens, push.Title, push.Body, data)
}

// RemindStreaksAtRisk queues a reminder for every user whose streak ends
// today unless they check in. It returns how many were queued.
func (s *NotificationService) RemindStreaksAtRisk(ctx context.Context) (int, error) {
	yesterday := civilToday(s.today).AddDays(-1)

	query := `
	SELECT u.id, u.streak
	FROM users u
	WHERE u.streak > 0
		AND u.last_checkin_date = $1
		AND EXISTS (SELECT 1 FROM device_tokens d WHERE d.user_id = u.id)`

	rows, err := s.db.Query(ctx, query, store.DateParam(yesterday))
	if err != nil {
		return 0, fmt.Errorf("failed to query streaks at risk: %w", err)
	}

	type atRisk struct {
		userID string
		streak int
	}
	var users []atRisk
	for rows.Next() {
		var u atRisk
		if err := rows.Scan(&u.userID, &u.streak); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan streak: %w", err)
		}
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read streaks: %w", err)
	}

	queued := 0
	for _, u := range users {
		ok := s.Dispatch(u.userID, notification.Push{
			Kind:  notification.KindStreakRisk,
			Title: "Keep your streak alive",
			Body:  fmt.Sprintf("Check in today to keep your %d-day streak going.", u.streak),
			Data:  map[string]any{"streak": u.streak},
		})
		if ok {
			queued++
		}
	}
	return queued, nil
}
