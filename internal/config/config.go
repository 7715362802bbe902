package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`

	DatabaseURL     string        `mapstructure:"database_url"`
	DBMaxConns      int32         `mapstructure:"db_max_conns"`
	DBMinConns      int32         `mapstructure:"db_min_conns"`
	DBConnLifetime  time.Duration `mapstructure:"db_conn_lifetime"`
	DBConnIdleTime  time.Duration `mapstructure:"db_conn_idle_time"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
	SeedCatalog     bool          `mapstructure:"seed_catalog"`
	DefaultDayTasks int           `mapstructure:"default_tasks_per_day"`

	ClerkSecretKey     string `mapstructure:"clerk_secret_key"`
	ClerkWebhookSecret string `mapstructure:"clerk_webhook_secret"`
	AuthDevSecret      string `mapstructure:"auth_dev_secret"`

	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
	StripeSuccessURL    string `mapstructure:"stripe_success_url"`
	StripeCancelURL     string `mapstructure:"stripe_cancel_url"`
	StripePrices        StripePrices

	PaddleAPIKey    string `mapstructure:"paddle_api_key"`
	PaddleSecretKey string `mapstructure:"paddle_secret_key"`
	PaddleSandbox   bool   `mapstructure:"paddle_sandbox"`

	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	GeminiModel       string `mapstructure:"gemini_model"`
	GeminiBaseURL     string `mapstructure:"gemini_base_url"`
	HuggingFaceAPIKey string `mapstructure:"huggingface_api_key"`
	HuggingFaceModel  string `mapstructure:"huggingface_model"`
	HuggingFaceURL    string `mapstructure:"huggingface_base_url"`
	CoachConcurrency  int64  `mapstructure:"coach_concurrency"`

	RedisURL           string `mapstructure:"redis_url"`
	FCMCredentialsFile string `mapstructure:"fcm_credentials_file"`

	MetricsUser string `mapstructure:"metrics_user"`
	MetricsPass string `mapstructure:"metrics_pass"`

	AchievementSchedule    string `mapstructure:"achievement_schedule"`
	StreakReminderSchedule string `mapstructure:"streak_reminder_schedule"`
	PushWorkers            int    `mapstructure:"push_workers"`
}

// StripePrices maps the plan ids exposed to clients onto Stripe price ids.
type StripePrices struct {
	ProMonthly     string `mapstructure:"stripe_price_pro_monthly"`
	ProAnnual      string `mapstructure:"stripe_price_pro_annual"`
	PremiumMonthly string `mapstructure:"stripe_price_premium_monthly"`
	PremiumAnnual  string `mapstructure:"stripe_price_premium_annual"`
}

var defaults = map[string]any{
	"port":                         "3333",
	"environment":                  "development",
	"database_url":                 "",
	"db_max_conns":                 25,
	"db_min_conns":                 5,
	"db_conn_lifetime":             time.Hour,
	"db_conn_idle_time":            30 * time.Minute,
	"migrate_on_start":             true,
	"seed_catalog":                 false,
	"default_tasks_per_day":        4,
	"clerk_secret_key":             "",
	"clerk_webhook_secret":         "",
	"auth_dev_secret":              "",
	"stripe_secret_key":            "",
	"stripe_webhook_secret":        "",
	"stripe_success_url":           "mindfuel://payment-success",
	"stripe_cancel_url":            "mindfuel://payment-cancelled",
	"stripe_price_pro_monthly":     "",
	"stripe_price_pro_annual":      "",
	"stripe_price_premium_monthly": "",
	"stripe_price_premium_annual":  "",
	"paddle_api_key":               "",
	"paddle_secret_key":            "",
	"paddle_sandbox":               true,
	"gemini_api_key":               "",
	"gemini_model":                 "gemini-1.5-flash",
	"gemini_base_url":              "https://generativelanguage.googleapis.com/v1beta/openai/",
	"huggingface_api_key":          "",
	"huggingface_model":            "mistralai/Mistral-7B-Instruct-v0.3",
	"huggingface_base_url":         "https://router.huggingface.co/v1",
	"coach_concurrency":            5,
	"redis_url":                    "",
	"fcm_credentials_file":         "./serviceAccountKey.json",
	"metrics_user":                 "",
	"metrics_pass":                 "",
	"achievement_schedule":         "0 30 0 * * *",
	"streak_reminder_schedule":     "0 0 20 * * *",
	"push_workers":                 4,
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := v.Unmarshal(&cfg.StripePrices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stripe prices: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	if c.ClerkSecretKey == "" && c.AuthDevSecret == "" {
		return errors.New("CLERK_SECRET_KEY environment variable is not set")
	}
	if c.IsProduction() {
		if c.ClerkSecretKey == "" {
			return errors.New("CLERK_SECRET_KEY must be set in production")
		}
		if c.ClerkWebhookSecret == "" {
			return errors.New("CLERK_WEBHOOK_SECRET must be set in production")
		}
	}
	if c.DefaultDayTasks <= 0 {
		return fmt.Errorf("DEFAULT_TASKS_PER_DAY must be positive, got %d", c.DefaultDayTasks)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
