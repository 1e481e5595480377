// Package profile implements the client for the upstream candidate profile
// service.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oks-citadel/applyflow/internal/core"
)

// Client fetches candidate profiles over HTTP. It implements
// core.ProfileService and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a profile client for the given service base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// GetProfile fetches one candidate profile. Transport failures come back as
// infrastructure errors so the retry controller treats them as transient.
func (c *Client) GetProfile(ctx context.Context, profileRef string) (*core.CandidateProfile, error) {
	url := fmt.Sprintf("%s/api/v1/profiles/%s", c.baseURL, profileRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &core.InfrastructureError{Op: "profile_fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &core.InfrastructureError{
			Op:  "profile_fetch",
			Err: fmt.Errorf("profile service returned status %d for %s", resp.StatusCode, profileRef),
		}
	}

	var p core.CandidateProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", profileRef, err)
	}
	if p.Ref == "" {
		p.Ref = profileRef
	}
	return &p, nil
}
