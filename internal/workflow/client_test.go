package workflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("t") != "tok" || q.Get("id") != "BundleErstellen" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		calls = append(calls, q.Get("action"))
		w.Header().Set("Content-Type", "application/json")
		if q.Get("action") == "status" {
			if q.Get("runId") != "run-42" {
				http.Error(w, "unknown run", http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{"status":"QUEUED"}`))
			return
		}
		_, _ = w.Write([]byte(`{"runId":"run-42"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok", time.Second)
	runID, status, err := Run(context.Background(), c, "BundleErstellen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runID != "run-42" {
		t.Errorf("expected run-42, got %s", runID)
	}
	if status != StatusQueued {
		t.Errorf("expected QUEUED, got %s", status)
	}
	if len(calls) != 2 || calls[0] != "" || calls[1] != "status" {
		t.Errorf("unexpected call sequence %v", calls)
	}
}

func TestTrigger_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "bad", time.Second)
	if _, err := c.Trigger(context.Background(), "Sets-erstellen-Komponenten"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTrigger_EmptyRunID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL, "tok", time.Second).Trigger(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestStatus_Describe(t *testing.T) {
	if got := StatusErrorSkip.Describe(); got != "ERROR_SKIP - flow not run, limits exceeded" {
		t.Errorf("unexpected description %q", got)
	}
	if got := Status("PAUSED").Describe(); got != "PAUSED - unknown status" {
		t.Errorf("unexpected description %q", got)
	}
}
