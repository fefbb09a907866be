package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	MigrationsPath    string
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	CORSAllowedOrigins []string
	RateLimit          string // ulule format, e.g. "100-M"
	LoginRateLimit     string
	RedisURL           string // empty keeps rate limits and sweep locks in process

	OTelEnabled           bool
	OTelCollectorEndpoint string
	OTelSamplingRatio     float64
	OTelServiceName       string

	AlertSweepEnabled     bool
	AlertSweepInterval    time.Duration
	AlertSweepConcurrency int

	AlertRules AlertRules
}

// AlertRules are the thresholds of the alert engine.
type AlertRules struct {
	Retention     time.Duration
	SweepLockTTL  time.Duration
	LowBalanceMin decimal.Decimal
	// LowBalanceUpcomingFactor scales pending expenses due within LowBalanceHorizonDays.
	LowBalanceUpcomingFactor decimal.Decimal
	LowBalanceHorizonDays    int
	LowBalanceResolveAbove   decimal.Decimal
	LowBalanceCooldown       time.Duration

	OverdueCriticalCount int
	OverdueCooldown      time.Duration

	GoalDeadlineDays      int
	GoalBaseProgress      decimal.Decimal // required progress floor
	GoalDailyStep         decimal.Decimal // required progress added per day closer to the deadline
	GoalResolveProgress   decimal.Decimal
	GoalDeadlineCooldown  time.Duration
	GoalHighSeverityDays  int
	GoalMediumSeverityDay int

	SpikeMultiplier   decimal.Decimal
	SpikeRecentDays   int
	SpikeBaselineDays int
	SpikeCooldown     time.Duration

	CashFlowWindowDays   int
	CashFlowWarnDays     int
	CashFlowCriticalDays int
	CashFlowCooldown     time.Duration

	BudgetCooldown time.Duration
}

// DefaultAlertRules returns the thresholds used when nothing is configured.
func DefaultAlertRules() AlertRules {
	return AlertRules{
		Retention:                30 * 24 * time.Hour,
		SweepLockTTL:             2 * time.Minute,
		LowBalanceMin:            decimal.NewFromInt(500),
		LowBalanceUpcomingFactor: decimal.NewFromFloat(1.2),
		LowBalanceHorizonDays:    7,
		LowBalanceResolveAbove:   decimal.NewFromInt(1000),
		LowBalanceCooldown:       24 * time.Hour,
		OverdueCriticalCount:     5,
		OverdueCooldown:          12 * time.Hour,
		GoalDeadlineDays:         10,
		GoalBaseProgress:         decimal.NewFromInt(70),
		GoalDailyStep:            decimal.NewFromInt(5),
		GoalResolveProgress:      decimal.NewFromInt(90),
		GoalDeadlineCooldown:     48 * time.Hour,
		GoalHighSeverityDays:     3,
		GoalMediumSeverityDay:    7,
		SpikeMultiplier:          decimal.NewFromInt(2),
		SpikeRecentDays:          7,
		SpikeBaselineDays:        90,
		SpikeCooldown:            6 * time.Hour,
		CashFlowWindowDays:       30,
		CashFlowWarnDays:         15,
		CashFlowCriticalDays:     7,
		CashFlowCooldown:         12 * time.Hour,
		BudgetCooldown:           24 * time.Hour,
	}
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	defaults := DefaultAlertRules()

	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "bizledger")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_COLLECTOR_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SAMPLING_RATIO", 1.0)
	v.SetDefault("OTEL_SERVICE_NAME", "bizledger")
	v.SetDefault("ALERT_SWEEP_ENABLED", false)
	v.SetDefault("ALERT_SWEEP_INTERVAL", "15m")
	v.SetDefault("ALERT_SWEEP_CONCURRENCY", 4)

	v.SetDefault("ALERT_RETENTION", defaults.Retention.String())
	v.SetDefault("ALERT_SWEEP_LOCK_TTL", defaults.SweepLockTTL.String())
	v.SetDefault("ALERT_LOW_BALANCE_MIN", defaults.LowBalanceMin.String())
	v.SetDefault("ALERT_LOW_BALANCE_UPCOMING_FACTOR", defaults.LowBalanceUpcomingFactor.String())
	v.SetDefault("ALERT_LOW_BALANCE_HORIZON_DAYS", defaults.LowBalanceHorizonDays)
	v.SetDefault("ALERT_LOW_BALANCE_RESOLVE_ABOVE", defaults.LowBalanceResolveAbove.String())
	v.SetDefault("ALERT_LOW_BALANCE_COOLDOWN", defaults.LowBalanceCooldown.String())
	v.SetDefault("ALERT_OVERDUE_CRITICAL_COUNT", defaults.OverdueCriticalCount)
	v.SetDefault("ALERT_OVERDUE_COOLDOWN", defaults.OverdueCooldown.String())
	v.SetDefault("ALERT_GOAL_DEADLINE_DAYS", defaults.GoalDeadlineDays)
	v.SetDefault("ALERT_GOAL_BASE_PROGRESS", defaults.GoalBaseProgress.String())
	v.SetDefault("ALERT_GOAL_DAILY_STEP", defaults.GoalDailyStep.String())
	v.SetDefault("ALERT_GOAL_RESOLVE_PROGRESS", defaults.GoalResolveProgress.String())
	v.SetDefault("ALERT_GOAL_DEADLINE_COOLDOWN", defaults.GoalDeadlineCooldown.String())
	v.SetDefault("ALERT_SPIKE_MULTIPLIER", defaults.SpikeMultiplier.String())
	v.SetDefault("ALERT_SPIKE_RECENT_DAYS", defaults.SpikeRecentDays)
	v.SetDefault("ALERT_SPIKE_BASELINE_DAYS", defaults.SpikeBaselineDays)
	v.SetDefault("ALERT_SPIKE_COOLDOWN", defaults.SpikeCooldown.String())
	v.SetDefault("ALERT_CASH_FLOW_WINDOW_DAYS", defaults.CashFlowWindowDays)
	v.SetDefault("ALERT_CASH_FLOW_WARN_DAYS", defaults.CashFlowWarnDays)
	v.SetDefault("ALERT_CASH_FLOW_CRITICAL_DAYS", defaults.CashFlowCriticalDays)
	v.SetDefault("ALERT_CASH_FLOW_COOLDOWN", defaults.CashFlowCooldown.String())
	v.SetDefault("ALERT_BUDGET_COOLDOWN", defaults.BudgetCooldown.String())

	v.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTExpiryDuration = durationOr(v, "JWT_EXPIRY_DURATION", time.Hour)

	cfg.JWTIssuer = v.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "bizledger"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = v.GetString("MIGRATIONS_PATH")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = v.GetString("RATE_LIMIT")
	cfg.LoginRateLimit = v.GetString("LOGIN_RATE_LIMIT")
	cfg.RedisURL = v.GetString("REDIS_URL")

	cfg.OTelEnabled = v.GetBool("OTEL_ENABLED")
	cfg.OTelCollectorEndpoint = v.GetString("OTEL_COLLECTOR_ENDPOINT")
	cfg.OTelSamplingRatio = v.GetFloat64("OTEL_SAMPLING_RATIO")
	cfg.OTelServiceName = v.GetString("OTEL_SERVICE_NAME")

	cfg.AlertSweepEnabled = v.GetBool("ALERT_SWEEP_ENABLED")
	cfg.AlertSweepInterval = durationOr(v, "ALERT_SWEEP_INTERVAL", 15*time.Minute)
	cfg.AlertSweepConcurrency = v.GetInt("ALERT_SWEEP_CONCURRENCY")
	if cfg.AlertSweepConcurrency < 1 {
		cfg.AlertSweepConcurrency = 1
	}

	cfg.AlertRules = AlertRules{
		Retention:                durationOr(v, "ALERT_RETENTION", defaults.Retention),
		SweepLockTTL:             durationOr(v, "ALERT_SWEEP_LOCK_TTL", defaults.SweepLockTTL),
		LowBalanceMin:            decimalOr(v, "ALERT_LOW_BALANCE_MIN", defaults.LowBalanceMin),
		LowBalanceUpcomingFactor: decimalOr(v, "ALERT_LOW_BALANCE_UPCOMING_FACTOR", defaults.LowBalanceUpcomingFactor),
		LowBalanceHorizonDays:    v.GetInt("ALERT_LOW_BALANCE_HORIZON_DAYS"),
		LowBalanceResolveAbove:   decimalOr(v, "ALERT_LOW_BALANCE_RESOLVE_ABOVE", defaults.LowBalanceResolveAbove),
		LowBalanceCooldown:       durationOr(v, "ALERT_LOW_BALANCE_COOLDOWN", defaults.LowBalanceCooldown),
		OverdueCriticalCount:     v.GetInt("ALERT_OVERDUE_CRITICAL_COUNT"),
		OverdueCooldown:          durationOr(v, "ALERT_OVERDUE_COOLDOWN", defaults.OverdueCooldown),
		GoalDeadlineDays:         v.GetInt("ALERT_GOAL_DEADLINE_DAYS"),
		GoalBaseProgress:         decimalOr(v, "ALERT_GOAL_BASE_PROGRESS", defaults.GoalBaseProgress),
		GoalDailyStep:            decimalOr(v, "ALERT_GOAL_DAILY_STEP", defaults.GoalDailyStep),
		GoalResolveProgress:      decimalOr(v, "ALERT_GOAL_RESOLVE_PROGRESS", defaults.GoalResolveProgress),
		GoalDeadlineCooldown:     durationOr(v, "ALERT_GOAL_DEADLINE_COOLDOWN", defaults.GoalDeadlineCooldown),
		GoalHighSeverityDays:     defaults.GoalHighSeverityDays,
		GoalMediumSeverityDay:    defaults.GoalMediumSeverityDay,
		SpikeMultiplier:          decimalOr(v, "ALERT_SPIKE_MULTIPLIER", defaults.SpikeMultiplier),
		SpikeRecentDays:          v.GetInt("ALERT_SPIKE_RECENT_DAYS"),
		SpikeBaselineDays:        v.GetInt("ALERT_SPIKE_BASELINE_DAYS"),
		SpikeCooldown:            durationOr(v, "ALERT_SPIKE_COOLDOWN", defaults.SpikeCooldown),
		CashFlowWindowDays:       v.GetInt("ALERT_CASH_FLOW_WINDOW_DAYS"),
		CashFlowWarnDays:         v.GetInt("ALERT_CASH_FLOW_WARN_DAYS"),
		CashFlowCriticalDays:     v.GetInt("ALERT_CASH_FLOW_CRITICAL_DAYS"),
		CashFlowCooldown:         durationOr(v, "ALERT_CASH_FLOW_COOLDOWN", defaults.CashFlowCooldown),
		BudgetCooldown:           durationOr(v, "ALERT_BUDGET_COOLDOWN", defaults.BudgetCooldown),
	}

	return cfg, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func decimalOr(v *viper.Viper, key string, fallback decimal.Decimal) decimal.Decimal {
	raw := v.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
