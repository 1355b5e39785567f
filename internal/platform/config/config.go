package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Price feed sources.
const (
	PriceFeedHTTP  = "http"
	PriceFeedPgSQL = "pgsql"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	AppEnv       string
	LogLevel     string
	LogFile      string

	// Price catalog
	PriceFeedSource  string
	PriceFeedURL     string
	PriceFeedTimeout time.Duration
	PriceNoiseFloor  decimal.Decimal

	// Quote engine and swap sessions
	QuotePrecision  int32
	SettlementDelay time.Duration
	SessionTTL      time.Duration

	// Session tokens
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string

	// Postgres price feed
	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string

	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("PRICE_FEED_SOURCE", PriceFeedHTTP)
	v.SetDefault("PRICE_FEED_URL", "https://interview.switcheo.com/prices.json")
	v.SetDefault("PRICE_FEED_TIMEOUT", "10s")
	v.SetDefault("PRICE_NOISE_FLOOR", "0.05")
	v.SetDefault("QUOTE_PRECISION", 5)
	v.SetDefault("SETTLEMENT_DELAY", "1000ms")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "currency-swapper")
	v.SetDefault("RATE_LIMIT", "30-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("POSTHOG_API_KEY", "")

	v.AutomaticEnv()

	cfg := &Config{
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFile:        v.GetString("LOG_FILE"),
		PriceFeedURL:   v.GetString("PRICE_FEED_URL"),
		RateLimit:      v.GetString("RATE_LIMIT"),
		DatabaseURL:    v.GetString("PGSQL_URL"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		PosthogAPIKey:  v.GetString("POSTHOG_API_KEY"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTIssuer:      v.GetString("JWT_ISSUER"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.PriceFeedSource = strings.ToLower(strings.TrimSpace(v.GetString("PRICE_FEED_SOURCE")))
	switch cfg.PriceFeedSource {
	case PriceFeedHTTP:
		if cfg.PriceFeedURL == "" {
			return nil, fmt.Errorf("PRICE_FEED_URL is required when PRICE_FEED_SOURCE is %q", PriceFeedHTTP)
		}
	case PriceFeedPgSQL:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when PRICE_FEED_SOURCE is %q", PriceFeedPgSQL)
		}
	default:
		return nil, fmt.Errorf("unsupported PRICE_FEED_SOURCE %q", cfg.PriceFeedSource)
	}

	noiseFloorStr := v.GetString("PRICE_NOISE_FLOOR")
	noiseFloor, err := decimal.NewFromString(noiseFloorStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_NOISE_FLOOR %q: %w", noiseFloorStr, err)
	}
	if noiseFloor.IsNegative() {
		return nil, fmt.Errorf("PRICE_NOISE_FLOOR must not be negative, got %s", noiseFloor)
	}
	cfg.PriceNoiseFloor = noiseFloor

	precision := v.GetInt("QUOTE_PRECISION")
	if precision < 0 || precision > 18 {
		return nil, fmt.Errorf("QUOTE_PRECISION must be between 0 and 18, got %d", precision)
	}
	cfg.QuotePrecision = int32(precision)

	// Zero settles swaps immediately; the other durations must be positive.
	cfg.SettlementDelay = durationOrDefault(v, "SETTLEMENT_DELAY", time.Second)
	if cfg.PriceFeedTimeout, err = positiveDuration(v, "PRICE_FEED_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = positiveDuration(v, "SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWTExpiryDuration, err = positiveDuration(v, "JWT_EXPIRY_DURATION", time.Hour); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "currency-swapper"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	if cfg.PosthogAPIKey == "" {
		log.Println("Warning: POSTHOG_API_KEY not set. Settlement analytics are disabled.")
	}

	return cfg, nil
}

// durationOrDefault parses key as a duration, falling back to def on a missing or invalid value.
func durationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

// positiveDuration is durationOrDefault for settings where a non-positive value
// cannot work, such as a ticker interval or a token lifetime.
func positiveDuration(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	d := durationOrDefault(v, key, def)
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
