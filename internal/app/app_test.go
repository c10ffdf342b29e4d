package app

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/config"
	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/export"
	"github.com/Harsh-BH/SetForge/internal/repository/mock"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg.Export.Dir = t.TempDir()
	return cfg
}

func TestNewExportWriter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Format = "xlsx"

	w, err := NewExportWriter(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path, err := w.Write(context.Background(), &export.Table{Name: "sets", Header: []string{"a"}, Rows: [][]string{{"1"}}})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if path == "" {
		t.Error("expected a location for the written export")
	}

	cfg.Export.Format = "json"
	if _, err := NewExportWriter(cfg); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestNewNotifier(t *testing.T) {
	n, err := NewNotifier(config.SMTPConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.Notify(context.Background(), "subject", "body"); err != nil {
		t.Errorf("log notifier should not fail: %v", err)
	}

	if _, err := NewNotifier(config.SMTPConfig{Host: "mail.local"}, zap.NewNop()); err == nil {
		t.Error("expected error for a relay without recipients")
	}
}

func TestNewWorkflowClient(t *testing.T) {
	if c := NewWorkflowClient(config.WorkflowConfig{}); c != nil {
		t.Error("expected no client without a base url")
	}
	if c := NewWorkflowClient(config.WorkflowConfig{BaseURL: "http://flows.local"}); c == nil {
		t.Error("expected a client")
	}
}

func TestNewRunners(t *testing.T) {
	runners, err := NewRunners(testConfig(t), mock.NewStore(), mock.NewComponentSource(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runners[domain.RunAggregate] == nil || runners[domain.RunImport] == nil {
		t.Fatalf("expected both runners, got %v", runners)
	}

	report, err := runners[domain.RunAggregate].Execute(context.Background(), &domain.RunRequest{Kind: domain.RunAggregate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Selected != 0 {
		t.Errorf("expected empty run, got %d selected", report.Selected)
	}
}

func TestSchedule(t *testing.T) {
	runs := make(chan *domain.RunMessage, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Schedule(ctx, runs, domain.RunImport, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	select {
	case msg := <-runs:
		if msg.Request.Kind != domain.RunImport {
			t.Errorf("expected import run, got %s", msg.Request.Kind)
		}
		if err := msg.Ack(); err != nil {
			t.Errorf("scheduled ack should be a no-op: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no run scheduled")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedule_Disabled(t *testing.T) {
	runs := make(chan *domain.RunMessage)
	Schedule(context.Background(), runs, domain.RunAggregate, 0, zap.NewNop())
}
