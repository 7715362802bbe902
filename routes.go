package main

import (
	"context"
	"net/http"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mindfuelAPI/handlers"
	"mindfuelAPI/internal/config"
	"mindfuelAPI/internal/store"
	"mindfuelAPI/middleware"
)

type application struct {
	cfg         *config.Config
	db          store.DB
	registry    *prometheus.Registry
	rateLimiter *middleware.RateLimiter
	verifier    middleware.TokenVerifier

	users         *handlers.UserHandler
	progress      *handlers.ProgressHandler
	challenges    *handlers.ChallengeHandler
	checkins      *handlers.CheckinHandler
	coach         *handlers.CoachHandler
	billing       *handlers.BillingHandler
	notifications *handlers.NotificationHandler
	healthTips    *handlers.HealthTipHandler
	webhooks      *handlers.WebhookHandler
}

func (app *application) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(app.rateLimiter.Middleware)
	r.Use(middleware.Monitor)

	metrics := promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry})
	r.Handle("/metrics", middleware.BasicAuth(app.cfg.MetricsUser, app.cfg.MetricsPass)(metrics)).Methods("GET")
	r.HandleFunc("/health", app.health).Methods("GET")

	r.HandleFunc("/webhooks/clerk", app.webhooks.HandleClerkWebhook).Methods("POST")
	r.HandleFunc("/webhooks/stripe", app.webhooks.HandleStripeWebhook).Methods("POST")
	r.HandleFunc("/webhooks/paddle", app.webhooks.HandlePaddleWebhook).Methods("POST")
	r.HandleFunc("/payment-success", app.billing.PaymentSuccessPage).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health-tips", app.healthTips.ListTips).Methods("GET")
	api.HandleFunc("/health-tips/featured", app.healthTips.GetFeatured).Methods("GET")
	api.HandleFunc("/paddle/prices", app.billing.GetPaddlePrices).Methods("GET")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(app.verifier))

	protected.HandleFunc("/users/current", app.users.GetProfile).Methods("GET")
	protected.HandleFunc("/users/current", app.users.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/users/current", app.users.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/users/current/stats", app.users.GetStats).Methods("GET")
	protected.HandleFunc("/users/current/achievements", app.users.GetAchievements).Methods("GET")
	protected.HandleFunc("/leaderboard/top", app.users.GetTopLeaderboard).Methods("GET")
	protected.HandleFunc("/leaderboard/current-user", app.users.GetCurrentUserRank).Methods("GET")

	protected.HandleFunc("/progress", app.progress.GetProgress).Methods("GET")
	protected.HandleFunc("/progress/daily", app.progress.GetDailyProgress).Methods("GET")
	protected.HandleFunc("/progress/week", app.progress.GetWeeklyProgress).Methods("GET")
	protected.HandleFunc("/progress/month", app.progress.GetMonthlyProgress).Methods("GET")

	protected.HandleFunc("/challenges", app.challenges.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges/current", app.challenges.GetCurrentChallenge).Methods("GET")
	protected.HandleFunc("/challenges/current/day", app.challenges.GetCurrentDay).Methods("GET")
	protected.HandleFunc("/challenges/completed", app.challenges.GetCompletedChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{id:[0-9]+}/start", app.challenges.StartChallenge).Methods("POST")
	protected.HandleFunc("/tasks/today", app.challenges.GetTodayTasks).Methods("GET")
	protected.HandleFunc("/tasks/{id:[0-9]+}", app.challenges.UpdateTask).Methods("PATCH")

	protected.HandleFunc("/checkins", app.checkins.CreateCheckin).Methods("POST")
	protected.HandleFunc("/checkins", app.checkins.ListCheckins).Methods("GET")

	protected.HandleFunc("/coach/conversations", app.coach.ListConversations).Methods("GET")
	protected.HandleFunc("/coach/conversations", app.coach.CreateConversation).Methods("POST")
	protected.HandleFunc("/coach/conversations/{id}/messages", app.coach.GetMessages).Methods("GET")
	protected.HandleFunc("/coach/conversations/{id}/messages", app.coach.SendMessage).Methods("POST")

	protected.HandleFunc("/billing/customer", app.billing.CreateCustomer).Methods("POST")
	protected.HandleFunc("/billing/subscription", app.billing.GetSubscription).Methods("GET")
	protected.HandleFunc("/billing/subscription", app.billing.CreateSubscription).Methods("POST")
	protected.HandleFunc("/billing/subscription", app.billing.CancelSubscription).Methods("DELETE")
	protected.HandleFunc("/billing/payment-intent", app.billing.CreatePaymentIntent).Methods("POST")
	protected.HandleFunc("/billing/checkout-session", app.billing.CreateCheckoutSession).Methods("POST")
	protected.HandleFunc("/paddle/transaction", app.billing.CreatePaddleTransaction).Methods("POST")

	protected.HandleFunc("/notifications/register-device", app.notifications.RegisterDevice).Methods("POST")

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.RequestIDHeader}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length", middleware.RequestIDHeader}),
	)
	return cors(r)
}

func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := app.db.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status": "healthy", "service": "mindfuel-api"}`))
}
