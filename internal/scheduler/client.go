// Package scheduler manages the remote cron schedule on the external
// scheduler API. The service keeps exactly one schedule alive, identified
// by a fixed deduplication key, so toggling activity is create-or-delete.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DeduplicationKey identifies the single report schedule on the remote
// scheduler. Create with the same key updates in place.
const DeduplicationKey = "daily-event-report-schedule"

// taskID names the remote task the schedule fires.
const taskID = "daily-event-report"

const defaultTimezone = "America/New_York"

// ErrNotConfigured is returned when no scheduler URL or key is set.
var ErrNotConfigured = errors.New("scheduler not configured")

type createRequest struct {
	Task             string `json:"task"`
	Cron             string `json:"cron"`
	Timezone         string `json:"timezone"`
	DeduplicationKey string `json:"deduplicationKey"`
	ExternalID       string `json:"externalId"`
}

// Schedule is the remote scheduler's view of the created schedule.
type Schedule struct {
	ID       string `json:"id"`
	Cron     string `json:"cron"`
	Timezone string `json:"timezone"`
}

// Client talks to the external scheduler's REST API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTPC   *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPC:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether the client can reach the scheduler.
func (c *Client) Configured() bool { return c.BaseURL != "" && c.APIKey != "" }

// Upsert creates or updates the report schedule. The cron expression is
// passed to the scheduler verbatim; it owns cron syntax validation.
func (c *Client) Upsert(ctx context.Context, cron, timezone string) (Schedule, error) {
	if !c.Configured() {
		return Schedule{}, ErrNotConfigured
	}
	if timezone == "" {
		timezone = defaultTimezone
	}

	body, err := json.Marshal(createRequest{
		Task:             taskID,
		Cron:             cron,
		Timezone:         timezone,
		DeduplicationKey: DeduplicationKey,
		ExternalID:       DeduplicationKey,
	})
	if err != nil {
		return Schedule{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/schedules", bytes.NewReader(body))
	if err != nil {
		return Schedule{}, err
	}
	c.headers(req)

	resp, err := c.HTTPC.Do(req)
	if err != nil {
		return Schedule{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Schedule{}, apiError("create schedule", resp)
	}

	var out Schedule
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Schedule{}, fmt.Errorf("scheduler: decode response: %w", err)
	}
	out.Cron = cron
	out.Timezone = timezone
	return out, nil
}

// Delete removes the report schedule. A missing schedule is not an error;
// AlreadyInactive is true when the scheduler reported 404.
func (c *Client) Delete(ctx context.Context) (alreadyInactive bool, err error) {
	if !c.Configured() {
		return false, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.BaseURL+"/schedules/"+DeduplicationKey, nil)
	if err != nil {
		return false, err
	}
	c.headers(req)

	resp, err := c.HTTPC.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, apiError("delete schedule", resp)
	}
	return false, nil
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func apiError(op string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("scheduler: %s: status %d: %s", op, resp.StatusCode,
		strings.TrimSpace(string(msg)))
}
