package adapter

import (
	"log/slog"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/mapper"
)

// KindGreenhouse names the Greenhouse-hosted board family
// (boards.greenhouse.io and embedded boards).
const KindGreenhouse = "greenhouse"

// NewGreenhouse creates the adapter for Greenhouse-hosted application forms.
// Greenhouse renders a single-page form with stable confirmation copy, so its
// signature table is narrow and high-confidence.
func NewGreenhouse(m *mapper.Mapper, solver core.CaptchaSolver, logger *slog.Logger) Adapter {
	return &familyAdapter{
		kind:   KindGreenhouse,
		mapper: m,
		solver: solver,
		logger: logger,
		sigs: signatures{
			success: []string{
				"thank you for applying",
				"your application has been submitted",
			},
			closed: []string{
				"this job is no longer open",
				"the job you are looking for is no longer open",
			},
			duplicate: []string{
				"you have already applied",
			},
			rejected: []string{
				"there was an error",
				"fix the following errors",
			},
		},
	}
}
