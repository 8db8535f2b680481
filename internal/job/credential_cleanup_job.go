package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/model"
)

type Sweeper interface {
	Sweep(ctx context.Context) (model.SweepResult, error)
}

// CredentialCleanupJob runs the janitor on the cron schedule.
type CredentialCleanupJob struct {
	sweeper Sweeper
}

func NewCredentialCleanupJob(sweeper Sweeper) *CredentialCleanupJob {
	return &CredentialCleanupJob{sweeper: sweeper}
}

func (j *CredentialCleanupJob) Name() string {
	return "credential_cleanup"
}

func (j *CredentialCleanupJob) Run(ctx context.Context) error {
	if j.sweeper == nil {
		return nil
	}
	res, err := j.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("credentials swept",
		zap.Int64("tokens", res.Tokens),
		zap.Int64("sessions", res.Sessions),
	)
	return nil
}
