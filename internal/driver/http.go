// Package driver implements the HTTP client for the external automation
// driver service that renders and interacts with application pages. The
// engine only ever sees the narrow core.AutomationDriver interface; the
// service behind it is pluggable.
package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oks-citadel/applyflow/internal/core"
)

// Factory opens isolated driver sessions against the automation service.
type Factory struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewFactory creates a session factory for the given driver service URL.
func NewFactory(baseURL string, httpClient *http.Client, logger *slog.Logger) *Factory {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Factory{baseURL: baseURL, http: httpClient, logger: logger}
}

// NewSession opens a fresh browser session. The returned cleanup releases the
// session on the service side; it detaches from the caller's context so a
// timed-out execution still frees its session.
func (f *Factory) NewSession(ctx context.Context) (core.AutomationDriver, func(), error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := f.call(ctx, http.MethodPost, "/v1/sessions", nil, &out); err != nil {
		return nil, nil, &core.InfrastructureError{Op: "session_open", Err: err}
	}

	s := &session{factory: f, id: out.SessionID}
	cleanup := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := f.call(closeCtx, http.MethodDelete, "/v1/sessions/"+s.id, nil, nil); err != nil {
			f.logger.Warn("failed to release driver session", "session_id", s.id, "error", err)
		}
	}
	return s, cleanup, nil
}

// session is one isolated browser session; it implements core.AutomationDriver.
type session struct {
	factory *Factory
	id      string
}

// page is the driver's page handle.
type page struct {
	ID      string `json:"page_id"`
	PageURL string `json:"url"`
}

func (p *page) URL() string { return p.PageURL }

func (s *session) Navigate(ctx context.Context, url string) (core.PageHandle, error) {
	var out page
	err := s.call(ctx, http.MethodPost, "/pages", map[string]string{"url": url}, &out)
	if err != nil {
		return nil, &core.InfrastructureError{Op: "navigate", Err: err}
	}
	return &out, nil
}

func (s *session) DiscoverFields(ctx context.Context, h core.PageHandle) ([]core.FormFieldDescriptor, error) {
	var out struct {
		Fields []core.FormFieldDescriptor `json:"fields"`
	}
	err := s.call(ctx, http.MethodGet, s.pagePath(h)+"/fields", nil, &out)
	if err != nil {
		return nil, &core.InfrastructureError{Op: "discover_fields", Err: err}
	}
	return out.Fields, nil
}

func (s *session) Fill(ctx context.Context, h core.PageHandle, assignments []core.FieldAssignment) error {
	body := map[string]any{"assignments": assignments}
	if err := s.call(ctx, http.MethodPost, s.pagePath(h)+"/fill", body, nil); err != nil {
		return &core.InfrastructureError{Op: "fill", Err: err}
	}
	return nil
}

func (s *session) Submit(ctx context.Context, h core.PageHandle) (core.PageHandle, error) {
	var out struct {
		page
		ChallengeRef string `json:"challenge_ref"`
	}
	if err := s.call(ctx, http.MethodPost, s.pagePath(h)+"/submit", nil, &out); err != nil {
		return nil, &core.InfrastructureError{Op: "submit", Err: err}
	}
	if out.ChallengeRef != "" {
		return nil, &core.CaptchaChallengeError{ChallengeRef: out.ChallengeRef}
	}
	return &out.page, nil
}

func (s *session) SolveChallenge(ctx context.Context, h core.PageHandle, token string) error {
	body := map[string]string{"token": token}
	if err := s.call(ctx, http.MethodPost, s.pagePath(h)+"/challenge", body, nil); err != nil {
		return &core.InfrastructureError{Op: "solve_challenge", Err: err}
	}
	return nil
}

func (s *session) PageState(ctx context.Context, h core.PageHandle) (string, error) {
	var out struct {
		State string `json:"state"`
	}
	if err := s.call(ctx, http.MethodGet, s.pagePath(h)+"/state", nil, &out); err != nil {
		return "", &core.InfrastructureError{Op: "page_state", Err: err}
	}
	return out.State, nil
}

func (s *session) CaptureEvidence(ctx context.Context, h core.PageHandle) (string, error) {
	var out struct {
		EvidenceRef string `json:"evidence_ref"`
	}
	if err := s.call(ctx, http.MethodPost, s.pagePath(h)+"/evidence", nil, &out); err != nil {
		return "", &core.InfrastructureError{Op: "capture_evidence", Err: err}
	}
	return out.EvidenceRef, nil
}

func (s *session) Close(ctx context.Context, h core.PageHandle) error {
	if err := s.call(ctx, http.MethodDelete, s.pagePath(h), nil, nil); err != nil {
		return &core.InfrastructureError{Op: "close_page", Err: err}
	}
	return nil
}

func (s *session) pagePath(h core.PageHandle) string {
	id := ""
	if p, ok := h.(*page); ok {
		id = p.ID
	}
	return "/pages/" + id
}

func (s *session) call(ctx context.Context, method, path string, body, out any) error {
	return s.factory.call(ctx, method, "/v1/sessions/"+s.id+path, body, out)
}

// call issues one JSON request against the driver service.
func (f *Factory) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("driver service %s %s returned status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
