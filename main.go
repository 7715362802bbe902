package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mindfuelAPI/handlers"
	"mindfuelAPI/internal/cache"
	"mindfuelAPI/internal/coach"
	"mindfuelAPI/internal/config"
	"mindfuelAPI/internal/logger"
	"mindfuelAPI/internal/notification"
	"mindfuelAPI/internal/store"
	"mindfuelAPI/internal/workers"
	"mindfuelAPI/middleware"
	"mindfuelAPI/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool := connectDB(ctx, cfg)
	defer func() {
		slog.Info("closing database connection pool")
		dbPool.Close()
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := middleware.RegisterMetrics(reg); err != nil {
		log.Fatal("Failed to register HTTP metrics:", err)
	}
	if err := coach.RegisterMetrics(reg); err != nil {
		log.Fatal("Failed to register coach metrics:", err)
	}

	var leaderboardCache cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, leaderboard cache disabled", "error", err)
		} else {
			defer rc.Close()
			leaderboardCache = rc
			slog.Info("redis cache connected")
		}
	}

	var pushProvider notification.PushProvider
	if fcm, err := notification.NewFCMService(ctx, cfg.FCMCredentialsFile); err != nil {
		slog.Warn("could not initialize FCM, pushes disabled", "error", err)
	} else {
		pushProvider = fcm
		slog.Info("FCM push provider initialized")
	}

	notificationService := services.NewNotificationService(dbPool, pushProvider, cfg.PushWorkers)
	notificationService.Start()
	defer notificationService.Stop()

	userService := services.NewUserService(dbPool, leaderboardCache)
	progressService := services.NewProgressService(dbPool, cfg.DefaultDayTasks)
	challengeService := services.NewChallengeService(dbPool)
	challengeService.SetDispatcher(notificationService)
	checkinService := services.NewCheckinService(dbPool)
	achievementService := services.NewAchievementService(dbPool, notificationService)
	healthTipService := services.NewHealthTipService(dbPool)
	coachService := services.NewCoachService(dbPool, newCoach(cfg))

	var (
		stripeBilling handlers.StripeBilling
		subSync       handlers.SubscriptionSync
	)
	if cfg.StripeSecretKey != "" {
		billing := services.NewBillingService(dbPool, services.NewStripeGateway(cfg.StripeSecretKey), cfg)
		stripeBilling, subSync = billing, billing
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, Stripe billing disabled")
	}

	var (
		paddleCheckout handlers.PaddleCheckout
		unlocker       handlers.PremiumUnlocker
	)
	if cfg.PaddleAPIKey != "" {
		client, err := services.NewPaddleClient(cfg.PaddleAPIKey, cfg.PaddleSandbox)
		if err != nil {
			log.Fatal("Failed to initialize Paddle client:", err)
		}
		paddle := services.NewPaddleService(client, dbPool, cfg.PaddleSandbox)
		paddleCheckout, unlocker = paddle, paddle
	} else {
		slog.Warn("PADDLE_API_KEY not set, Paddle checkout disabled")
	}

	cronManager := workers.NewManager(
		workers.NewAchievementJob(achievementService),
		workers.NewStreakReminderJob(notificationService),
	)
	if err := cronManager.RegisterJobs(workers.Schedules{
		Achievements:   cfg.AchievementSchedule,
		StreakReminder: cfg.StreakReminderSchedule,
	}); err != nil {
		log.Fatal("Failed to schedule cron jobs:", err)
	}
	cronManager.Start()

	rateLimiter := middleware.NewRateLimiter(10, 20)
	go rateLimiter.Cleanup(ctx)

	app := &application{
		cfg:         cfg,
		db:          dbPool,
		registry:    reg,
		rateLimiter: rateLimiter,
		verifier:    newVerifier(cfg),

		users:         handlers.NewUserHandler(userService, achievementService),
		progress:      handlers.NewProgressHandler(progressService),
		challenges:    handlers.NewChallengeHandler(challengeService),
		checkins:      handlers.NewCheckinHandler(checkinService, progressService.Today),
		coach:         handlers.NewCoachHandler(coachService),
		billing:       handlers.NewBillingHandler(stripeBilling, paddleCheckout),
		notifications: handlers.NewNotificationHandler(notificationService),
		healthTips:    handlers.NewHealthTipHandler(healthTipService),
		webhooks: handlers.NewWebhookHandler(userService, subSync, unlocker, handlers.WebhookSecrets{
			Clerk:  cfg.ClerkWebhookSecret,
			Stripe: cfg.StripeWebhookSecret,
			Paddle: cfg.PaddleSecretKey,
		}),
	}

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server:", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	cronManager.Stop(shutdownCtx)

	slog.Info("server shutdown complete")
}

func connectDB(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := store.NewPool(connectCtx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	slog.Info("connected to database")

	if cfg.MigrateOnStart {
		if err := store.Migrate(connectCtx, pool); err != nil {
			log.Fatal("Failed to migrate schema:", err)
		}
	}
	if cfg.SeedCatalog {
		seeded, err := store.Seed(connectCtx, pool)
		if err != nil {
			log.Fatal("Failed to seed catalog:", err)
		}
		if seeded {
			slog.Info("seeded challenge catalog")
		}
	}
	return pool
}

// newCoach chains Gemini, then Hugging Face. Providers without a key are
// skipped; with none configured every reply comes from the keyword table.
func newCoach(cfg *config.Config) *coach.Coach {
	var providers []coach.Provider

	if cfg.GeminiAPIKey != "" {
		p, err := coach.NewOpenAICompatible("gemini", cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			slog.Warn("gemini provider disabled", "error", err)
		} else {
			providers = append(providers, p)
		}
	}
	if cfg.HuggingFaceAPIKey != "" {
		p, err := coach.NewOpenAICompatible("huggingface", cfg.HuggingFaceAPIKey, cfg.HuggingFaceModel, cfg.HuggingFaceURL)
		if err != nil {
			slog.Warn("huggingface provider disabled", "error", err)
		} else {
			providers = append(providers, p)
		}
	}
	if len(providers) == 0 {
		slog.Warn("no LLM provider configured, coach uses fallback replies")
	}
	return coach.New(cfg.CoachConcurrency, providers...)
}

func newVerifier(cfg *config.Config) middleware.TokenVerifier {
	if cfg.ClerkSecretKey != "" {
		slog.Info("clerk initialized")
		return middleware.NewClerkVerifier(cfg.ClerkSecretKey)
	}
	slog.Warn("CLERK_SECRET_KEY not set, accepting development tokens")
	return middleware.NewDevVerifier(cfg.AuthDevSecret)
}
