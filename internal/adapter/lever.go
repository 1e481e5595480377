package adapter

import (
	"log/slog"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/mapper"
)

// KindLever names the Lever-hosted posting family (jobs.lever.co).
const KindLever = "lever"

// NewLever creates the adapter for Lever-hosted application forms.
func NewLever(m *mapper.Mapper, solver core.CaptchaSolver, logger *slog.Logger) Adapter {
	return &familyAdapter{
		kind:   KindLever,
		mapper: m,
		solver: solver,
		logger: logger,
		sigs: signatures{
			success: []string{
				"application submitted",
				"thanks for applying",
			},
			closed: []string{
				"this posting is no longer accepting applications",
				"posting not found",
			},
			duplicate: []string{
				"you've already applied",
				"already submitted an application",
			},
			rejected: []string{
				"submission failed",
				"invalid submission",
			},
		},
	}
}
