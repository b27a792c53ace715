package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-availability-service/internal/currentavailability"
	"github.com/fekuna/omnipos-availability-service/internal/currentavailability/dto"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
)

type countingUseCase struct {
	currentavailability.UseCase
	runs int
}

func (c *countingUseCase) RefreshAll(ctx context.Context) (*dto.SweepResult, error) {
	c.runs++
	return &dto.SweepResult{Refreshed: 3}, nil
}

type memLocker struct {
	held     map[string]string
	released []string
}

func (l *memLocker) AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *memLocker) ReleaseLock(ctx context.Context, key, value string) error {
	if l.held[key] == value {
		delete(l.held, key)
		l.released = append(l.released, key)
	}
	return nil
}

func TestRun_TakesAndReleasesLock(t *testing.T) {
	uc := &countingUseCase{}
	locker := &memLocker{held: map[string]string{}}
	j := NewSweepJob(uc, locker, "", time.Minute, logger.NewNop())

	j.Run(context.Background())

	assert.Equal(t, 1, uc.runs)
	assert.Equal(t, []string{LockKey}, locker.released)
	assert.Empty(t, locker.held)
}

func TestRun_SkipsWhenLockHeld(t *testing.T) {
	uc := &countingUseCase{}
	locker := &memLocker{held: map[string]string{LockKey: "other-replica"}}
	j := NewSweepJob(uc, locker, "", time.Minute, logger.NewNop())

	j.Run(context.Background())

	assert.Equal(t, 0, uc.runs)
	assert.Equal(t, "other-replica", locker.held[LockKey])
}

func TestStart_RejectsBadSpec(t *testing.T) {
	j := NewSweepJob(&countingUseCase{}, nil, "every now and then", time.Minute, logger.NewNop())
	require.Error(t, j.Start())
}

func TestNewSweepJob_DefaultsSpec(t *testing.T) {
	j := NewSweepJob(&countingUseCase{}, nil, "", time.Minute, logger.NewNop())
	assert.Equal(t, DefaultSpec, j.spec)
}
