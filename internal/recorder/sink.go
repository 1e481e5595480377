package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oks-citadel/applyflow/internal/core"
)

// LogSink emits outcomes to the structured log only. It is the default when
// no webhook is configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s *LogSink) Publish(_ context.Context, outcome *core.SubmissionOutcome) error {
	s.Logger.Info("outcome event",
		"task_id", outcome.TaskID,
		"status", outcome.Status,
		"reason", outcome.ReasonCode,
	)
	return nil
}

// WebhookSink POSTs each outcome as JSON to a downstream collaborator
// (analytics, notifications). Consumers must tolerate duplicate delivery.
type WebhookSink struct {
	URL    string
	Client *http.Client
}

// NewWebhookSink creates a sink for the given endpoint.
func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSink{URL: url, Client: client}
}

func (s *WebhookSink) Publish(ctx context.Context, outcome *core.SubmissionOutcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to encode outcome event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver outcome event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("outcome sink returned status %d", resp.StatusCode)
	}
	return nil
}
