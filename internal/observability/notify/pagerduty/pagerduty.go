package pagerduty

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

	"github.com/pressrun/backoffice/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	routingKey string
	source     string
	component  string
	retryLimit int
	client     *http.Client
}

// NewClient constructs a PagerDuty events client from config. Callers must provide a routing key.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	retries := max(cfg.RetryLimit, 0)

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		routingKey: key,
		source:     fallbackString(strings.TrimSpace(cfg.Source), "pressrun"),
		component:  fallbackString(strings.TrimSpace(cfg.Component), "outbox-dispatcher"),
		retryLimit: retries,
		client:     hc,
	}, nil
}

// SendDeliveryFailure submits a trigger event to PagerDuty for an outbox
// event that exhausted its delivery attempts.
func (c *Client) SendDeliveryFailure(ctx context.Context, payload notify.DeliveryFailurePayload) error {
	event := c.buildEvent(payload)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode pagerduty payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err = c.submit(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

func (c *Client) buildEvent(payload notify.DeliveryFailurePayload) map[string]any {
	occurredAt := payload.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	custom := map[string]any{
		"event_id":    payload.EventID,
		"job_id":      payload.JobID,
		"event_type":  payload.EventType,
		"attempts":    payload.Attempts,
		"error":       payload.Error,
		"error_class": payload.ErrorClass,
	}

	summary := fmt.Sprintf("outbox delivery failed: %s for job %s after %d attempts",
		payload.EventType, payload.JobID, payload.Attempts)

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    "outbox:" + payload.EventID,
		"payload": map[string]any{
			"summary":        summary,
			"source":         c.source,
			"component":      c.component,
			"severity":       notify.SeverityCritical,
			"timestamp":      occurredAt.Format(time.RFC3339),
			"custom_details": custom,
		},
	}
}

func (c *Client) submit(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, APIEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create pagerduty request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pagerduty request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("pagerduty %s: read response: %w", resp.Status, readErr)
		}
		return fmt.Errorf("pagerduty %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("drain pagerduty response: %w", err)
	}
	return nil
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
