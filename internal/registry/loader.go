package registry

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type strategyFile struct {
	Strategies []strategyEntry `yaml:"strategies"`
}

type strategyEntry struct {
	Match          string    `yaml:"match"`
	Adapter        string    `yaml:"adapter"`
	ConfidenceTier int       `yaml:"confidence_tier"`
	LastValidated  time.Time `yaml:"last_validated"`
	Timeout        string    `yaml:"timeout"`
}

// LoadFile reads a registry from a YAML strategy file and builds it. The file
// is the out-of-band artifact operators edit to onboard new target sites.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strategy file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a registry from raw YAML strategy data.
func Parse(data []byte) (*Registry, error) {
	var file strategyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse strategy file: %w", err)
	}

	strategies := make([]TargetStrategy, 0, len(file.Strategies))
	for _, e := range file.Strategies {
		s := TargetStrategy{
			MatchPattern:    e.Match,
			AdapterKind:     e.Adapter,
			ConfidenceTier:  ConfidenceTier(e.ConfidenceTier),
			LastValidatedAt: e.LastValidated,
		}
		if e.Timeout != "" {
			d, err := time.ParseDuration(e.Timeout)
			if err != nil {
				return nil, fmt.Errorf("strategy %q has invalid timeout %q: %w", e.Match, e.Timeout, err)
			}
			s.Timeout = d
		}
		strategies = append(strategies, s)
	}
	return New(strategies)
}
