package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/manav03panchal/watchout/internal/model"
)

// Sink is one delivery target.
type Sink interface {
	Name() string
	Send(ctx context.Context, n *model.Notification) error
}

// DefaultWebhookTimeout bounds a webhook post when none is configured.
const DefaultWebhookTimeout = 10 * time.Second

// WebhookSink posts notifications to a chat webhook. Each notification is
// attempted once.
type WebhookSink struct {
	webhook   model.Webhook
	formatter Formatter
	client    *http.Client
}

// NewWebhookSink creates a sink for w. A nil client uses a client with
// DefaultWebhookTimeout.
func NewWebhookSink(w model.Webhook, client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{Timeout: DefaultWebhookTimeout}
	}
	return &WebhookSink{
		webhook:   w,
		formatter: FormatterFor(w),
		client:    client,
	}
}

// Name returns "webhook:<name>".
func (s *WebhookSink) Name() string {
	return "webhook:" + s.webhook.Name
}

// Send formats and posts n.
func (s *WebhookSink) Send(ctx context.Context, n *model.Notification) error {
	payload, err := s.formatter.Format(n)
	if err != nil {
		return fmt.Errorf("failed to format notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhook.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", s.formatter.ContentType())
	req.Header.Set("User-Agent", "WatchOut/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &HTTPError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}

// HTTPError is a non-2xx webhook response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned HTTP %d: %s", e.StatusCode, e.Body)
}
