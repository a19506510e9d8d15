package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	calls  int
	cutoff int64
	err    error
}

func (f *fakePruner) DeleteBefore(_ context.Context, cutoff int64) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 4, f.err
}

func TestAccessLogCleanupJob(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	pruner := &fakePruner{}
	j := NewAccessLogCleanupJob(pruner, 48*time.Hour)
	j.now = func() time.Time { return now }

	require.Equal(t, "access_log_cleanup", j.Name())
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, now.Add(-48*time.Hour).Unix(), pruner.cutoff)

	pruner.err = errors.New("db down")
	require.ErrorContains(t, j.Run(context.Background()), "db down")
}

func TestAccessLogCleanupJobDisabledRetention(t *testing.T) {
	pruner := &fakePruner{}
	j := NewAccessLogCleanupJob(pruner, 0)

	require.NoError(t, j.Run(context.Background()))
	require.Zero(t, pruner.calls)
}
