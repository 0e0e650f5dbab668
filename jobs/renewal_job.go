package jobs

import (
	"context"
	"time"

	"dinehub/billing"

	"go.uber.org/zap"
)

// RenewalJob sweeps subscriptions whose renewal date has arrived. Individual
// failures are already isolated inside the engine's batch driver.
type RenewalJob struct {
	engine *billing.RenewalEngine
	logger *zap.Logger
}

func NewRenewalJob(engine *billing.RenewalEngine, logger *zap.Logger) *RenewalJob {
	return &RenewalJob{engine: engine, logger: logger}
}

func (j *RenewalJob) Name() string { return "subscription-renewal" }

func (j *RenewalJob) Run(ctx context.Context) error {
	summary, err := j.engine.RenewDue(ctx, time.Now())
	if err != nil {
		return err
	}
	j.logger.Info("subscription renewal sweep finished",
		zap.Int("due", summary.Due),
		zap.Int("renewed", summary.Renewed),
		zap.Int("failed", summary.Failed))
	return nil
}
