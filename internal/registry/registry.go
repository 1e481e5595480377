// Package registry maps job-posting origins to handling strategies. It is the
// single seam for scaling target coverage: supporting a new site means adding
// a registry entry and an adapter, never touching the queue or the workers.
package registry

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// ConfidenceTier ranks how well a strategy is known to work. Higher is better.
// Tier 0 is reserved for the generic fallback.
type ConfidenceTier int

const (
	TierFallback ConfidenceTier = 0
	TierObserved ConfidenceTier = 1
	TierTested   ConfidenceTier = 2
	TierVerified ConfidenceTier = 3
)

// GenericAdapterKind names the fallback adapter every unmatched target routes to.
const GenericAdapterKind = "generic"

// TargetStrategy binds a URL pattern to the adapter that drives that family
// of application flows. Strategies are read-mostly; the engine never writes them.
type TargetStrategy struct {
	MatchPattern    string         `json:"match_pattern"`
	AdapterKind     string         `json:"adapter_kind"`
	ConfidenceTier  ConfidenceTier `json:"confidence_tier"`
	LastValidatedAt time.Time      `json:"last_validated_at"`
	Timeout         time.Duration  `json:"timeout,omitempty"`

	host       string
	pathPrefix string
}

// Registry resolves a target URL to exactly one strategy.
type Registry struct {
	mu         sync.RWMutex
	strategies []TargetStrategy
	fallback   TargetStrategy
}

// New creates a registry over the given strategies. Invalid match patterns
// are rejected so misconfiguration fails at startup, not per task.
func New(strategies []TargetStrategy) (*Registry, error) {
	r := &Registry{
		fallback: TargetStrategy{
			MatchPattern:   "*",
			AdapterKind:    GenericAdapterKind,
			ConfidenceTier: TierFallback,
		},
	}
	for _, s := range strategies {
		host, prefix, err := splitPattern(s.MatchPattern)
		if err != nil {
			return nil, err
		}
		s.host = host
		s.pathPrefix = prefix
		if s.AdapterKind == "" {
			return nil, fmt.Errorf("strategy %q has no adapter kind", s.MatchPattern)
		}
		r.strategies = append(r.strategies, s)
	}
	return r, nil
}

// Fallback returns the generic catch-all strategy.
func (r *Registry) Fallback() TargetStrategy {
	return r.fallback
}

// Resolve selects the best-matching strategy for a target URL: the most
// specific pattern wins, ties broken by higher confidence tier, then by most
// recent validation. Unmatched targets get the generic fallback so the engine
// always attempts something.
func (r *Registry) Resolve(targetURL string) TargetStrategy {
	host, path, err := normalizeTarget(targetURL)
	if err != nil {
		return r.fallback
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []TargetStrategy
	for _, s := range r.strategies {
		if s.matches(host, path) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return r.fallback
	}

	sort.SliceStable(matches, func(i, j int) bool {
		si, sj := matches[i].specificity(), matches[j].specificity()
		if si != sj {
			return si > sj
		}
		if matches[i].ConfidenceTier != matches[j].ConfidenceTier {
			return matches[i].ConfidenceTier > matches[j].ConfidenceTier
		}
		return matches[i].LastValidatedAt.After(matches[j].LastValidatedAt)
	})
	return matches[0]
}

// matches reports whether the strategy covers the given host and path. A
// pattern host matches itself and any subdomain of it.
func (s *TargetStrategy) matches(host, path string) bool {
	if host != s.host && !strings.HasSuffix(host, "."+s.host) {
		return false
	}
	return strings.HasPrefix(path, s.pathPrefix)
}

func (s *TargetStrategy) specificity() int {
	return len(s.host) + len(s.pathPrefix)
}

// normalizeTarget reduces a URL to a lowercase registrable host and a path.
func normalizeTarget(targetURL string) (host, path string, err error) {
	if !strings.Contains(targetURL, "://") {
		targetURL = "https://" + targetURL
	}
	u, err := url.Parse(targetURL)
	if err != nil {
		return "", "", fmt.Errorf("unparseable target URL %q: %w", targetURL, err)
	}
	host = strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", "", fmt.Errorf("target URL %q has no host", targetURL)
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return host, path, nil
}

// splitPattern parses a "host/path-prefix" match pattern.
func splitPattern(pattern string) (host, prefix string, err error) {
	pattern = strings.TrimSpace(strings.ToLower(pattern))
	pattern = strings.TrimPrefix(pattern, "https://")
	pattern = strings.TrimPrefix(pattern, "http://")
	pattern = strings.TrimPrefix(pattern, "www.")
	if pattern == "" || pattern == "*" {
		return "", "", fmt.Errorf("match pattern %q is too broad; the fallback is implicit", pattern)
	}
	host, prefix, _ = strings.Cut(pattern, "/")
	if host == "" {
		return "", "", fmt.Errorf("match pattern %q has no host", pattern)
	}
	return host, "/" + prefix, nil
}
