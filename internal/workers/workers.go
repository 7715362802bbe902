package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// sweepTimeout bounds one pass over all users.
const sweepTimeout = 10 * time.Minute

type AchievementEvaluator interface {
	EvaluateAll(ctx context.Context) (int, error)
}

type StreakReminder interface {
	RemindStreaksAtRisk(ctx context.Context) (int, error)
}

// SweepJob runs a user-wide pass and logs how many users it touched.
type SweepJob struct {
	name    string
	run     func(ctx context.Context) (int, error)
	timeout time.Duration
}

// NewAchievementJob unlocks achievements whose rules became true since the
// previous run.
func NewAchievementJob(e AchievementEvaluator) *SweepJob {
	return &SweepJob{name: "achievement evaluation", run: e.EvaluateAll, timeout: sweepTimeout}
}

// NewStreakReminderJob nudges users who have not checked in yet today.
func NewStreakReminderJob(r StreakReminder) *SweepJob {
	return &SweepJob{name: "streak reminder", run: r.RemindStreaksAtRisk, timeout: sweepTimeout}
}

func (j *SweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	n, err := j.run(ctx)
	if err != nil {
		slog.Error("cron job failed", "job", j.name, "error", err, "affected", n)
		return
	}
	slog.Info("cron job finished", "job", j.name, "affected", n, "took", time.Since(start).String())
}

type Schedules struct {
	Achievements   string
	StreakReminder string
}

type Manager struct {
	engine         *cron.Cron
	achievementJob *SweepJob
	reminderJob    *SweepJob
}

func NewManager(achievementJob, reminderJob *SweepJob) *Manager {
	return &Manager{
		engine:         cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		achievementJob: achievementJob,
		reminderJob:    reminderJob,
	}
}

// RegisterJobs schedules both sweeps. Specs carry a seconds field, e.g.
// "0 30 0 * * *". An empty spec leaves that job off.
func (m *Manager) RegisterJobs(s Schedules) error {
	jobs := []struct {
		spec string
		job  *SweepJob
	}{
		{s.Achievements, m.achievementJob},
		{s.StreakReminder, m.reminderJob},
	}
	for _, j := range jobs {
		if j.spec == "" || j.job == nil {
			continue
		}
		if _, err := m.engine.AddJob(j.spec, j.job); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) Start() {
	slog.Info("cron engine starting", "jobs", len(m.engine.Entries()))
	m.engine.Start()
}

// Stop halts scheduling and waits for a running job until ctx is done.
func (m *Manager) Stop(ctx context.Context) {
	slog.Info("cron engine stopping")
	select {
	case <-m.engine.Stop().Done():
	case <-ctx.Done():
		slog.Warn("cron job still running at shutdown")
	}
}
