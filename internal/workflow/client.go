// Package workflow triggers flows on the external workflow-automation service
// and reads back their run status.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Status is the run state reported by the workflow service.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusQueued    Status = "QUEUED"
	StatusNew       Status = "NEW"
	StatusSkipped   Status = "SKIPPED"
	StatusSuccess   Status = "SUCCESS"
	StatusError     Status = "ERROR"
	StatusWarning   Status = "WARNING"
	StatusErrorSkip Status = "ERROR_SKIP"
)

var statusDescriptions = map[Status]string{
	StatusScheduled: "flow is scheduled",
	StatusQueued:    "flow is queued",
	StatusNew:       "flow is running",
	StatusSkipped:   "flow was skipped",
	StatusSuccess:   "flow finished successfully",
	StatusError:     "flow aborted with an error",
	StatusWarning:   "flow finished with warnings",
	StatusErrorSkip: "flow not run, limits exceeded",
}

// Describe renders the status with a human readable explanation.
func (s Status) Describe() string {
	if d, ok := statusDescriptions[s]; ok {
		return fmt.Sprintf("%s - %s", s, d)
	}
	return fmt.Sprintf("%s - unknown status", s)
}

// Client starts flows and queries their status.
type Client interface {
	Trigger(ctx context.Context, flowID string) (string, error)
	Status(ctx context.Context, flowID, runID string) (Status, error)
}

type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient creates a client for the flow API at baseURL.
func NewHTTPClient(baseURL, token string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) Trigger(ctx context.Context, flowID string) (string, error) {
	var resp struct {
		RunID string `json:"runId"`
	}
	if err := c.get(ctx, url.Values{"id": {flowID}, "t": {c.token}}, &resp); err != nil {
		return "", fmt.Errorf("workflow: trigger %s: %w", flowID, err)
	}
	if resp.RunID == "" {
		return "", fmt.Errorf("workflow: trigger %s: empty run id", flowID)
	}
	return resp.RunID, nil
}

func (c *httpClient) Status(ctx context.Context, flowID, runID string) (Status, error) {
	var resp struct {
		Status Status `json:"status"`
	}
	q := url.Values{"id": {flowID}, "t": {c.token}, "action": {"status"}, "runId": {runID}}
	if err := c.get(ctx, q, &resp); err != nil {
		return "", fmt.Errorf("workflow: status %s/%s: %w", flowID, runID, err)
	}
	return resp.Status, nil
}

func (c *httpClient) get(ctx context.Context, q url.Values, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		// The request URL carries the token; report the host only.
		return fmt.Errorf("request to %s failed", u.Host)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected response %s: %s", resp.Status, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Run triggers flowID and reads its status once.
func Run(ctx context.Context, c Client, flowID string) (string, Status, error) {
	runID, err := c.Trigger(ctx, flowID)
	if err != nil {
		return "", "", err
	}
	status, err := c.Status(ctx, flowID, runID)
	if err != nil {
		return runID, "", err
	}
	return runID, status, nil
}
