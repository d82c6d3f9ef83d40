package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LWA_CLIENT_ID", "client-id")
	t.Setenv("LWA_CLIENT_SECRET", "client-secret")
	t.Setenv("LWA_REFRESH_TOKEN", "refresh-token")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.MarketplaceID != DefaultMarketplaceID {
		t.Fatalf("expected default marketplace, got %s", cfg.MarketplaceID)
	}
	if cfg.MinOrderAgeDays != 20 || cfg.MaxEligibleDays != 30 {
		t.Fatalf("unexpected window defaults: min=%d max=%d", cfg.MinOrderAgeDays, cfg.MaxEligibleDays)
	}
	if cfg.SolicitInterval != time.Second {
		t.Fatalf("expected 1s solicit interval, got %v", cfg.SolicitInterval)
	}
	if cfg.PageInterval != 100*time.Millisecond {
		t.Fatalf("expected 100ms page interval, got %v", cfg.PageInterval)
	}
	if cfg.DryRun {
		t.Fatalf("expected dry run off by default")
	}
	if cfg.SchemaVersion != DefaultSchemaVersion {
		t.Fatalf("unexpected schema version %s", cfg.SchemaVersion)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MIN_ORDER_AGE_DAYS", "5")
	t.Setenv("MAX_ELIGIBLE_DAYS", "25")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("SOLICIT_INTERVAL", "2s")
	t.Setenv("LEDGER_SCHEMA_VERSION", "v2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.MinOrderAgeDays != 5 || cfg.MaxEligibleDays != 25 {
		t.Fatalf("overrides not applied: min=%d max=%d", cfg.MinOrderAgeDays, cfg.MaxEligibleDays)
	}
	if !cfg.DryRun {
		t.Fatalf("expected dry run on")
	}
	if cfg.SolicitInterval != 2*time.Second {
		t.Fatalf("expected 2s interval, got %v", cfg.SolicitInterval)
	}
	if cfg.SchemaVersion != "v2" {
		t.Fatalf("expected schema version v2, got %s", cfg.SchemaVersion)
	}
}

func TestFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("LWA_CLIENT_ID", "")
	t.Setenv("LWA_CLIENT_SECRET", "")
	t.Setenv("LWA_REFRESH_TOKEN", "")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func TestFromEnv_InvalidWindow(t *testing.T) {
	setRequiredEnv(t)
	// max must exceed min
	t.Setenv("MIN_ORDER_AGE_DAYS", "30")
	t.Setenv("MAX_ELIGIBLE_DAYS", "20")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error when max eligible days <= min order age")
	}
}

func TestFromEnv_BadInt(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MIN_ORDER_AGE_DAYS", "twenty")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected parse error for non-numeric MIN_ORDER_AGE_DAYS")
	}
}
