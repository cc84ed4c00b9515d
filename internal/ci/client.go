package ci

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/qaforge/internal/config"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
)

// TriggerRun is the runner backend's record of a created test run. Field
// tags match the backend's wire format.
type TriggerRun struct {
	RunID         string `json:"runId"`
	Repository    string `json:"repository"`
	RepoURL       string `json:"repoUrl"`
	WorkflowURL   string `json:"workflowUrl"`
	WorkflowRunID int64  `json:"workflowRunId"`
}

// Client forwards generated scripts to the GitHub Actions runner backend.
// Run creation and run polling carry separate timeouts; a backend that
// cannot be reached at all surfaces as ErrCIUnavailable.
type Client struct {
	baseURL string
	trigger *http.Client
	poll    *http.Client
}

func New(cfg config.CIConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		trigger: &http.Client{Timeout: time.Duration(cfg.TriggerTimeoutSecs) * time.Second},
		poll:    &http.Client{Timeout: time.Duration(cfg.PollTimeoutSecs) * time.Second},
	}
}

// Trigger submits a script for execution. The backend provisions a
// throwaway repository named after the test id and answers 201 with the run
// record.
func (c *Client) Trigger(ctx context.Context, testID string, script string) (*TriggerRun, error) {
	payload := map[string]string{
		"testScript": script,
		"testName":   testID,
		"repoName":   "selenium-test-" + testID,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/create-test-run", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.trigger.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCIUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ci response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("ci request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var envelope struct {
		Success bool       `json:"success"`
		Data    TriggerRun `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode ci response: %w", err)
	}
	run := envelope.Data
	if run.RunID == "" {
		return nil, fmt.Errorf("ci response missing run id")
	}
	// the workflow url is filled in lazily by the backend, point at the
	// repository's actions page until it exists
	if run.WorkflowURL == "" && run.RepoURL != "" {
		run.WorkflowURL = run.RepoURL + "/actions"
	}
	return &run, nil
}

func (c *Client) Status(ctx context.Context, runID string) (json.RawMessage, error) {
	return c.fetch(ctx, "status", runID)
}

func (c *Client) Logs(ctx context.Context, runID string) (json.RawMessage, error) {
	return c.fetch(ctx, "logs", runID)
}

func (c *Client) Artifacts(ctx context.Context, runID string) (json.RawMessage, error) {
	return c.fetch(ctx, "artifacts", runID)
}

// fetch proxies one read endpoint. Successful envelopes are unwrapped to
// their data payload; anything else is passed through untouched so callers
// see whatever the backend reported.
func (c *Client) fetch(ctx context.Context, kind string, runID string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/api/%s/%s", c.baseURL, kind, url.PathEscape(runID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.poll.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCIUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ci response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ci request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Success && len(envelope.Data) > 0 {
		return envelope.Data, nil
	}
	return json.RawMessage(body), nil
}
