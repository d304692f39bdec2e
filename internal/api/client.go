package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
)

// DefaultClientTimeout bounds a single API call.
const DefaultClientTimeout = 10 * time.Second

// Client implements engine.Controller against a running daemon.
type Client struct {
	base string
	http *http.Client
}

var _ engine.Controller = (*Client)(nil)

// NewClient creates a client for the daemon listening on addr. addr may be
// "host:port" or a full base URL.
func NewClient(addr string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultClientTimeout}
	}
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{base: strings.TrimRight(base, "/"), http: httpClient}
}

// Ping reports whether the daemon answers on its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Health returns the daemon's health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// TestNotify sends a test notification through every sink of the daemon.
func (c *Client) TestNotify(ctx context.Context) ([]TestResult, error) {
	var out []TestResult
	err := c.do(ctx, http.MethodPost, "/notify/test", nil, &out)
	return out, err
}

// List returns the active reminders.
func (c *Client) List(ctx context.Context) ([]model.Reminder, error) {
	var out []model.Reminder
	err := c.do(ctx, http.MethodGet, "/reminders", nil, &out)
	return out, err
}

// ListLibrary returns the saved reminders.
func (c *Client) ListLibrary(ctx context.Context) ([]model.Reminder, error) {
	var out []model.Reminder
	err := c.do(ctx, http.MethodGet, "/library", nil, &out)
	return out, err
}

// Add creates a reminder.
func (c *Client) Add(ctx context.Context, title, description string, freq model.Frequency) (model.Reminder, error) {
	var out model.Reminder
	req := AddRequest{Title: title, Description: description, Frequency: &freq}
	err := c.do(ctx, http.MethodPost, "/reminders", req, &out)
	return out, err
}

// Remove deletes a reminder.
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reminders/"+url.PathEscape(id), nil, nil)
}

// SaveToLibrary copies an active reminder into the library.
func (c *Client) SaveToLibrary(ctx context.Context, id string) (model.Reminder, error) {
	var out model.Reminder
	err := c.do(ctx, http.MethodPost, "/library/"+url.PathEscape(id), nil, &out)
	return out, err
}

// RemoveFromLibrary deletes a saved reminder.
func (c *Client) RemoveFromLibrary(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/library/"+url.PathEscape(id), nil, nil)
}

// ActivateFromLibrary moves a saved reminder back into the active set.
func (c *Client) ActivateFromLibrary(ctx context.Context, id string) (model.Reminder, error) {
	var out model.Reminder
	err := c.do(ctx, http.MethodPost, "/library/activate", ActivateRequest{ID: id}, &out)
	return out, err
}

// ActiveIDs returns the ids with a pending timer.
func (c *Client) ActiveIDs(ctx context.Context) ([]string, error) {
	timers, err := c.Timers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(timers))
	for i, t := range timers {
		ids[i] = t.ID
	}
	return ids, nil
}

// Timers returns every pending timer.
func (c *Client) Timers(ctx context.Context) ([]engine.Timer, error) {
	var out []engine.Timer
	err := c.do(ctx, http.MethodGet, "/scheduler/active", nil, &out)
	return out, err
}

// Schedule re-arms an active reminder.
func (c *Client) Schedule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/scheduler/"+url.PathEscape(id), nil, nil)
}

// Cancel stops a reminder's timer.
func (c *Client) Cancel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/scheduler/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return errors.Wrap(errors.ErrDaemonNotRunning, err.Error())
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Code == "" {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	switch body.Code {
	case CodeValidation:
		return errors.NewValidationError(body.Field, body.Error, body.Suggestion)
	case CodeNotFound:
		return errors.ErrReminderNotFound
	case CodeAmbiguous:
		return errors.ErrAmbiguousID
	case CodeFireTimeInPast:
		return errors.ErrFireTimeInPast
	case CodeDaemonNotRunning:
		return errors.ErrDaemonNotRunning
	default:
		return errors.New(body.Error)
	}
}
