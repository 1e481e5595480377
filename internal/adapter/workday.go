package adapter

import (
	"log/slog"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/mapper"
)

// KindWorkday names the Workday-hosted tenant family (*.myworkdayjobs.com).
const KindWorkday = "workday"

// NewWorkday creates the adapter for Workday-hosted flows. Workday fronts
// most tenants with an account wall, so the auth-wall signatures matter more
// here than for the other families.
func NewWorkday(m *mapper.Mapper, solver core.CaptchaSolver, logger *slog.Logger) Adapter {
	return &familyAdapter{
		kind:   KindWorkday,
		mapper: m,
		solver: solver,
		logger: logger,
		sigs: signatures{
			success: []string{
				"you've successfully applied",
				"application complete",
				"congratulations",
			},
			closed: []string{
				"job is no longer available",
				"requisition is closed",
			},
			duplicate: []string{
				"you have already applied to this job",
			},
			rejected: []string{
				"unable to process your application",
				"an error occurred",
			},
			authWall: []string{
				"sign in",
				"create account",
				"forgot password",
			},
		},
	}
}
