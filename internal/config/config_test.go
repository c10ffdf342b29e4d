package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Export.Format != "csv" || cfg.Export.Sink != "file" {
		t.Errorf("unexpected export defaults %+v", cfg.Export)
	}
	if len(cfg.Import.Paths) != 2 {
		t.Errorf("expected two import candidates, got %v", cfg.Import.Paths)
	}
	if cfg.Workflow.AggregateFlowID != "BundleErstellen" {
		t.Errorf("unexpected aggregate flow %q", cfg.Workflow.AggregateFlowID)
	}
	if cfg.Pricing.TaxRate.String() != "0.19" {
		t.Errorf("expected tax rate 0.19, got %s", cfg.Pricing.TaxRate)
	}
	if !cfg.DetailOptions().Ignore.Has("162") {
		t.Error("expected the default property denylist")
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("EXPORT_FORMAT", "XLSX")
	t.Setenv("SMTP_TO", "ops@example.com, sets@example.com ,")
	t.Setenv("SCHEDULE_IMPORT_INTERVAL", "15m")
	t.Setenv("PROPERTY_IGNORE_IDS", "1,2")
	t.Setenv("PRICING_CHANNEL_MARKUP", "0.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Export.Format != "xlsx" {
		t.Errorf("expected xlsx, got %q", cfg.Export.Format)
	}
	if len(cfg.SMTP.To) != 2 || cfg.SMTP.To[1] != "sets@example.com" {
		t.Errorf("unexpected recipients %v", cfg.SMTP.To)
	}
	if cfg.Schedule.ImportInterval != 15*time.Minute {
		t.Errorf("expected 15m, got %s", cfg.Schedule.ImportInterval)
	}
	opts := cfg.DetailOptions()
	if opts.Ignore.Has("162") || !opts.Ignore.Has("2") {
		t.Error("expected the configured denylist to replace the default")
	}
	if opts.Pricing.ChannelMarkup.String() != "0.2" {
		t.Errorf("unexpected markup %s", opts.Pricing.ChannelMarkup)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("EXPORT_SINK", "ftp")
	if _, err := Load(); err == nil {
		t.Error("expected an error for an unknown sink")
	}
}
