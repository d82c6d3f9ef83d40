package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

// Defaults for the North America marketplace deployment.
const (
	DefaultMarketplaceID = "ATVPDKIKX0DER"
	DefaultEndpoint      = "https://sellingpartnerapi-na.amazon.com"
	DefaultTokenURL      = "https://api.amazon.com/auth/o2/token/"
	DefaultLedgerTable   = "review_solicitations"
	DefaultSchemaVersion = "v1"
	DefaultUserAgent     = "ReviewSolicitor/1.0 (Language=Go)"
)

// Config carries every tunable for one run. It is built once in main and
// passed into constructors; nothing reads the environment after FromEnv.
type Config struct {
	// LWA credentials for the registered application.
	LWAClientID     string `validate:"required"`
	LWAClientSecret string `validate:"required"`
	LWARefreshToken string `validate:"required"`

	MarketplaceID string `validate:"required"`
	Endpoint      string `validate:"required,url"`
	TokenURL      string `validate:"required,url"`
	UserAgent     string `validate:"required"`

	// Orders younger than MinOrderAgeDays are not yet eligible; orders
	// older than MaxEligibleDays have aged out (Amazon caps this at 30).
	MinOrderAgeDays int `validate:"required,min=1"`
	MaxEligibleDays int `validate:"required,gtfield=MinOrderAgeDays"`

	// DryRun skips the outbound solicitation call but still writes the
	// ledger, so a later live run will not reprocess the same orders.
	DryRun bool

	LedgerTable   string `validate:"required"`
	SchemaVersion string `validate:"required"`

	// AssumeRoleARN switches the request signer from ambient credentials
	// to an assumed role. Empty means ambient (normal inside Lambda).
	AssumeRoleARN string

	SolicitInterval time.Duration `validate:"required,gt=0"`
	PageInterval    time.Duration `validate:"required,gt=0"`

	// Status report email. The report is skipped unless both addresses
	// are set.
	ReportFrom string `validate:"omitempty,email"`
	ReportTo   string `validate:"omitempty,email"`

	// Optional enrichment for the report.
	ProductASIN         string
	RainforestAPIKey    string
	FacebookAccessToken string
	FacebookAdSetID     string
}

// FromEnv assembles a Config from environment variables, applying defaults
// and validating the result.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LWAClientID:     os.Getenv("LWA_CLIENT_ID"),
		LWAClientSecret: os.Getenv("LWA_CLIENT_SECRET"),
		LWARefreshToken: os.Getenv("LWA_REFRESH_TOKEN"),

		MarketplaceID: envOr("MARKETPLACE_ID", DefaultMarketplaceID),
		Endpoint:      envOr("SP_API_ENDPOINT", DefaultEndpoint),
		TokenURL:      envOr("LWA_TOKEN_URL", DefaultTokenURL),
		UserAgent:     envOr("USER_AGENT", DefaultUserAgent),

		LedgerTable:   envOr("LEDGER_TABLE", DefaultLedgerTable),
		SchemaVersion: envOr("LEDGER_SCHEMA_VERSION", DefaultSchemaVersion),

		AssumeRoleARN: os.Getenv("ASSUME_ROLE_ARN"),

		ReportFrom: os.Getenv("REPORT_FROM_ADDRESS"),
		ReportTo:   os.Getenv("REPORT_TO_ADDRESS"),

		ProductASIN:         os.Getenv("PRODUCT_ASIN"),
		RainforestAPIKey:    os.Getenv("RAINFOREST_API_KEY"),
		FacebookAccessToken: os.Getenv("FACEBOOK_ACCESS_TOKEN"),
		FacebookAdSetID:     os.Getenv("FACEBOOK_AD_SET_ID"),
	}

	var err error
	if cfg.MinOrderAgeDays, err = envInt("MIN_ORDER_AGE_DAYS", 20); err != nil {
		return nil, err
	}
	if cfg.MaxEligibleDays, err = envInt("MAX_ELIGIBLE_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = envBool("DRY_RUN", false); err != nil {
		return nil, err
	}
	if cfg.SolicitInterval, err = envDuration("SOLICIT_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.PageInterval, err = envDuration("PAGE_INTERVAL", 100*time.Millisecond); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and the eligibility-window invariant
// (MaxEligibleDays must exceed MinOrderAgeDays).
func (c *Config) Validate() error {
	v := validatorv10.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
