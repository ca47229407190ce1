package jobs

import (
	"context"
	"time"
)

// InitializeJobs starts the scheduled sync in the background.
func InitializeJobs(ctx context.Context, syncJob *LogbookSyncJob, syncInterval time.Duration) *LogbookSyncJob {
	go syncJob.RunScheduled(ctx, syncInterval)
	return syncJob
}
