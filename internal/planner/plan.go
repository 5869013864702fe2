package planner

import (
	"context"
	"log/slog"

	"shotscout/internal/logging"
	"shotscout/internal/shotplan"
)

// BuildPlan returns the episode's shot plan: the provider's draft when it
// converts to a valid plan, the compiled plan otherwise. The returned
// source is "draft" or "compiled".
func BuildPlan(ctx context.Context, provider DraftProvider, topic, narration string, logger *slog.Logger) (*shotplan.Plan, string) {
	logger = logging.NewComponentLogger(logger, "planner")
	if provider != nil {
		draft, err := provider.Draft(ctx, topic, narration)
		if err == nil {
			plan, convErr := draftToPlan(topic, draft)
			if convErr == nil {
				logger.Info("using draft shot plan", logging.Int("scenes", len(plan.Scenes)))
				return plan, "draft"
			}
			err = convErr
		}
		logging.WarnWithContext(logger, "draft provider unavailable", "draft_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "falling back to compiled plan"))
	}
	plan := Compile(topic, narration)
	logger.Info("using compiled shot plan", logging.Int("scenes", len(plan.Scenes)))
	return plan, "compiled"
}
