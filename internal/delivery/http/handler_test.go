package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	mockpub "github.com/Harsh-BH/SetForge/internal/publisher/mock"
	mockrepo "github.com/Harsh-BH/SetForge/internal/repository/mock"
	"github.com/Harsh-BH/SetForge/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter() (*gin.Engine, *mockrepo.Store, *mockpub.MockPublisher) {
	store := mockrepo.NewStore()
	pub := mockpub.NewMockPublisher()
	logger := zap.NewNop()

	router := NewRouter(&RouterDeps{
		CreateUC:       usecase.NewCreateSetJobUsecase(store, logger),
		EditUC:         usecase.NewEditSetJobUsecase(store, logger),
		DeleteUC:       usecase.NewDeleteSetJobUsecase(store, logger),
		GetUC:          usecase.NewGetSetJobUsecase(store, logger),
		TriggerUC:      usecase.NewTriggerRunUsecase(pub, logger),
		Logger:         logger,
		BodyLimit:      1 << 10,
		StreamInterval: 10 * time.Millisecond,
	})
	return router, store, pub
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateHandler_Success(t *testing.T) {
	router, store, _ := setupTestRouter()

	w := doJSON(router, http.MethodPost, "/api/v1/set-jobs", map[string]any{
		"requested_by": 47,
		"set_type":     "423;476",
		"variant_ids":  []int64{101, 202},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var view struct {
		ID              int64  `json:"id"`
		Status          string `json:"status"`
		RequestedByName string `json:"requested_by_name"`
		SetLabel        string `json:"set_label"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if view.ID == 0 || view.Status != "OPEN" {
		t.Errorf("unexpected job %+v", view)
	}
	if view.RequestedByName != "Emily" || view.SetLabel != "Backofen-Set" {
		t.Errorf("expected resolved names, got %+v", view)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 stored job, got %d", store.Len())
	}
}

func TestCreateHandler_BadRequests(t *testing.T) {
	router, _, _ := setupTestRouter()

	tests := []struct {
		name string
		body any
	}{
		{"empty body", map[string]any{}},
		{"unknown requester", map[string]any{"requested_by": 3, "set_type": "x", "variant_ids": []int64{1, 2}}},
		{"one component", map[string]any{"requested_by": 8, "set_type": "x", "variant_ids": []int64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/v1/set-jobs", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateHandler_Duplicate(t *testing.T) {
	router, store, _ := setupTestRouter()
	variant := int64(9001)
	existing := store.Seed(&domain.SetJob{
		RequestedBy: 8, SetType: "x", Status: domain.StatusComponentsAdded,
		NewVariantID: &variant, Items: domain.NewItems([]int64{7, 14}),
	})

	w := doJSON(router, http.MethodPost, "/api/v1/set-jobs", map[string]any{
		"requested_by": 8, "set_type": "x", "variant_ids": []int64{14, 7},
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		JobID        int64  `json:"job_id"`
		NewVariantID *int64 `json:"new_variant_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.JobID != existing.ID || resp.NewVariantID == nil || *resp.NewVariantID != 9001 {
		t.Errorf("unexpected conflict body %s", w.Body.String())
	}
}

func TestUpdateHandler(t *testing.T) {
	router, store, _ := setupTestRouter()
	reason := "MissingBarcodeError: no unused barcode available"
	errored := store.Seed(&domain.SetJob{
		RequestedBy: 8, SetType: "x", Status: domain.StatusError,
		LastError: &reason, Items: domain.NewItems([]int64{1, 2}),
	})
	waiting := store.Seed(&domain.SetJob{
		RequestedBy: 8, SetType: "x", Status: domain.StatusWaitingForComponents,
		Items: domain.NewItems([]int64{3, 4}),
	})
	body := map[string]any{"requested_by": 9, "set_type": "y", "variant_ids": []int64{5, 6}}

	w := doJSON(router, http.MethodPut, "/api/v1/set-jobs/"+itoa(errored.ID), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.Job(errored.ID).Status != domain.StatusOpen {
		t.Error("expected edited job to be OPEN again")
	}

	w = doJSON(router, http.MethodPut, "/api/v1/set-jobs/"+itoa(waiting.ID), map[string]any{
		"requested_by": 9, "set_type": "y", "variant_ids": []int64{7, 8},
	})
	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409 for a waiting job, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPut, "/api/v1/set-jobs/999", body)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetAndDeleteHandlers(t *testing.T) {
	router, store, _ := setupTestRouter()
	job := store.Seed(&domain.SetJob{
		RequestedBy: 2, SetType: "430;432", Status: domain.StatusOpen,
		Items: domain.NewItems([]int64{1, 2}),
	})

	w := doJSON(router, http.MethodGet, "/api/v1/set-jobs/"+itoa(job.ID), nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"requested_by_name":"Kristin"`) {
		t.Errorf("unexpected get response %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/api/v1/set-jobs", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"set_jobs"`) {
		t.Errorf("unexpected list response %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/api/v1/set-jobs/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for a malformed id, got %d", w.Code)
	}

	w = doJSON(router, http.MethodDelete, "/api/v1/set-jobs/"+itoa(job.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(router, http.MethodGet, "/api/v1/set-jobs/"+itoa(job.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", w.Code)
	}
}

func TestRunHandler(t *testing.T) {
	router, _, pub := setupTestRouter()

	w := doJSON(router, http.MethodPost, "/api/v1/runs/aggregate?dry_run=true", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(pub.Published) != 1 || pub.Published[0].Kind != domain.RunAggregate || !pub.Published[0].DryRun {
		t.Errorf("unexpected published requests %+v", pub.Published)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/runs/cleanup", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for an unknown kind, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/runs/import?dry_run=maybe", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for a malformed flag, got %d", w.Code)
	}

	pub.PublishFn = func(context.Context, *domain.RunRequest) error { return errors.New("broker down") }
	w = doJSON(router, http.MethodPost, "/api/v1/runs/import", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestReferenceHandler(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doJSON(router, http.MethodGet, "/api/v1/reference", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Requesters []domain.RequesterInfo `json:"requesters"`
		SetTypes   []domain.SetTypeInfo   `json:"set_types"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(resp.Requesters) != 5 || resp.Requesters[0].Name != "Andreas" {
		t.Errorf("unexpected requesters %+v", resp.Requesters)
	}
	if len(resp.SetTypes) != len(domain.SetTypes) {
		t.Errorf("expected %d set types, got %d", len(domain.SetTypes), len(resp.SetTypes))
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}, zap.NewNop())

	router := gin.New()
	router.GET("/api/v1/health", handler.Health)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"redis":"unavailable"`) || !strings.Contains(w.Body.String(), `"postgres":"ok"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestWebSocketStream(t *testing.T) {
	router, store, _ := setupTestRouter()
	job := store.Seed(&domain.SetJob{
		RequestedBy: 8, SetType: "x", Status: domain.StatusWaitingForComponents,
		Items: domain.NewItems([]int64{1, 2}),
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/set-jobs/" + itoa(job.ID) + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	var first struct {
		Status string `json:"status"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if first.Status != string(domain.StatusWaitingForComponents) {
		t.Errorf("expected WAITING_FOR_COMPONENTS, got %s", first.Status)
	}

	if _, err := store.Jobs().ApplyImport(context.Background(), job.ID, 5001, 6001); err != nil {
		t.Fatalf("apply import: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg struct {
			Status string `json:"status"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("expected a terminal update before the stream closed: %v", err)
		}
		if msg.Status == string(domain.StatusComponentsAdded) {
			break
		}
	}

	// The server closes the stream after the terminal update.
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the stream to be closed")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
