package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressrun/backoffice/internal/observability/notify"
)

// roundTripperFunc lets tests intercept the fixed events API endpoint.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func failurePayload() notify.DeliveryFailurePayload {
	return notify.DeliveryFailurePayload{
		EventID:    "evt-stuck",
		JobID:      "job-1",
		EventType:  "job.became_ready",
		Attempts:   5,
		Error:      "connection refused",
		ErrorClass: "network",
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSendDeliveryFailure(t *testing.T) {
	var got map[string]any
	hc := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, APIEndpoint, req.URL.String())
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		return respond(http.StatusAccepted, `{"status":"success"}`), nil
	})}

	client, err := NewClient(Config{RoutingKey: "rk-123", Client: hc})
	require.NoError(t, err)

	require.NoError(t, client.SendDeliveryFailure(context.Background(), failurePayload()))

	assert.Equal(t, "rk-123", got["routing_key"])
	assert.Equal(t, "trigger", got["event_action"])
	assert.Equal(t, "outbox:evt-stuck", got["dedup_key"], "re-pages dedupe per stuck event")

	payload, _ := got["payload"].(map[string]any)
	require.NotNil(t, payload)
	assert.Equal(t, notify.SeverityCritical, payload["severity"])
	assert.Equal(t, "pressrun", payload["source"])
	assert.Equal(t, "outbox-dispatcher", payload["component"])
	assert.Contains(t, payload["summary"], "after 5 attempts")

	custom, _ := payload["custom_details"].(map[string]any)
	require.NotNil(t, custom)
	assert.Equal(t, "network", custom["error_class"])
	assert.Equal(t, "job-1", custom["job_id"])
}

func TestSendDeliveryFailureRetries(t *testing.T) {
	calls := 0
	hc := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return respond(http.StatusInternalServerError, "event api busy"), nil
		}
		return respond(http.StatusAccepted, "{}"), nil
	})}

	client, err := NewClient(Config{RoutingKey: "rk-123", RetryLimit: 2, Client: hc})
	require.NoError(t, err)

	require.NoError(t, client.SendDeliveryFailure(context.Background(), failurePayload()))
	assert.Equal(t, 2, calls)
}

func TestSendDeliveryFailureSurfacesAPIError(t *testing.T) {
	hc := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusBadRequest, "invalid routing key"), nil
	})}

	client, err := NewClient(Config{RoutingKey: "rk-bad", Client: hc})
	require.NoError(t, err)

	err = client.SendDeliveryFailure(context.Background(), failurePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid routing key")
}

func TestNewClientRequiresRoutingKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}
