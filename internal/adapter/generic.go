package adapter

import (
	"log/slog"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/mapper"
	"github.com/oks-citadel/applyflow/internal/registry"
)

// NewGeneric creates the mandatory fallback adapter used for every target
// without a dedicated family. Its signatures are broad heuristics, so it maps
// with a raised confidence floor: low-confidence strategies get stricter
// validation, not looser.
func NewGeneric(m *mapper.Mapper, solver core.CaptchaSolver, logger *slog.Logger) Adapter {
	return &familyAdapter{
		kind:   registry.GenericAdapterKind,
		mapper: m.Strict(),
		solver: solver,
		logger: logger,
		sigs: signatures{
			success: []string{
				"thank you for applying",
				"thank you for your application",
				"application received",
				"application submitted",
				"successfully submitted",
				"we have received your application",
			},
			closed: []string{
				"no longer accepting applications",
				"position has been filled",
				"this job is no longer available",
				"posting has expired",
				"job closed",
			},
			duplicate: []string{
				"already applied",
				"duplicate application",
				"application already exists",
			},
			rejected: []string{
				"something went wrong",
				"error submitting",
				"please correct the errors",
				"required field",
			},
			authWall: []string{
				"sign in to apply",
				"log in to continue",
				"create an account to apply",
			},
		},
	}
}
