package job

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/currentavailability"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultSpec = "@hourly"
	LockKey     = "lock:sweep:current_availability"
)

// SweepJob recomputes every current availability row on a schedule so dates
// that moved into the past drop out of the cache.
type SweepJob struct {
	uc      currentavailability.UseCase
	locker  currentavailability.Locker
	lockTTL time.Duration
	spec    string
	cron    *cron.Cron
	logger  logger.ZapLogger
}

func NewSweepJob(uc currentavailability.UseCase, locker currentavailability.Locker, spec string, lockTTL time.Duration, log logger.ZapLogger) *SweepJob {
	if spec == "" {
		spec = DefaultSpec
	}
	return &SweepJob{
		uc:      uc,
		locker:  locker,
		lockTTL: lockTTL,
		spec:    spec,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  log,
	}
}

func (j *SweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.Run(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("Started current availability sweep", zap.String("spec", j.spec))
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (j *SweepJob) Stop() {
	<-j.cron.Stop().Done()
}

// Run executes one pass unless another replica holds the lock.
func (j *SweepJob) Run(ctx context.Context) {
	token := uuid.New().String()
	if j.locker != nil {
		ok, err := j.locker.AcquireLock(ctx, LockKey, token, j.lockTTL)
		if err != nil {
			j.logger.Error("failed to acquire sweep lock", zap.Error(err))
			return
		}
		if !ok {
			j.logger.Debug("sweep already running elsewhere, skipping")
			return
		}
		defer func() {
			if err := j.locker.ReleaseLock(context.Background(), LockKey, token); err != nil {
				j.logger.Warn("failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	result, err := j.uc.RefreshAll(ctx)
	if err != nil {
		j.logger.Error("current availability sweep failed", zap.Error(err))
		return
	}
	j.logger.Info("Finished current availability sweep",
		zap.Int("refreshed", result.Refreshed),
		zap.Int("failed", result.Failed),
		zap.Duration("took", time.Since(start)),
	)
}
