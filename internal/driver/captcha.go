package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oks-citadel/applyflow/internal/core"
)

// CaptchaClient calls an external challenge-solving service. It implements
// core.CaptchaSolver.
type CaptchaClient struct {
	baseURL string
	http    *http.Client
}

// NewCaptchaClient creates a solver client for the given service URL.
func NewCaptchaClient(baseURL string, httpClient *http.Client) *CaptchaClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &CaptchaClient{baseURL: baseURL, http: httpClient}
}

// Solve submits a challenge and waits for a token until the deadline.
func (c *CaptchaClient) Solve(ctx context.Context, challengeRef string, deadline time.Time) (string, error) {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	body, err := json.Marshal(map[string]string{"challenge_ref": challengeRef})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/solve", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrCaptchaFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: solver returned status %d", core.ErrCaptchaFailed, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrCaptchaFailed, err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: solver returned empty token", core.ErrCaptchaFailed)
	}
	return out.Token, nil
}
