package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type accessPruner interface {
	DeleteBefore(ctx context.Context, cutoff int64) (int64, error)
}

// AccessLogCleanupJob drops share access records older than the retention
// window. A window <= 0 keeps every record.
type AccessLogCleanupJob struct {
	accesses accessPruner
	keep     time.Duration
	now      func() time.Time
}

func NewAccessLogCleanupJob(accesses accessPruner, keep time.Duration) *AccessLogCleanupJob {
	return &AccessLogCleanupJob{accesses: accesses, keep: keep, now: time.Now}
}

func (j *AccessLogCleanupJob) Name() string {
	return "access_log_cleanup"
}

func (j *AccessLogCleanupJob) Run(ctx context.Context) error {
	if j.accesses == nil || j.keep <= 0 {
		return nil
	}
	cutoff := j.now().Add(-j.keep).Unix()
	removed, err := j.accesses.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("share access log pruned", zap.Int64("removed", removed), zap.Int64("cutoff", cutoff))
	return nil
}
