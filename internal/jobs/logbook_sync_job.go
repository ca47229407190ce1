package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/services"
)

// Syncer runs one logbook sync.
type Syncer interface {
	Sync(ctx context.Context, trigger string) (services.SyncResult, error)
}

// LastSyncLookup tells when an event last completed.
type LastSyncLookup interface {
	GetLastSyncTime(ctx context.Context, event string) (*time.Time, error)
}

// JobStatus is a snapshot of the sync job.
type JobStatus struct {
	Running    bool                 `json:"running"`
	LastRunAt  *time.Time           `json:"lastRunAt,omitempty"`
	LastResult *services.SyncResult `json:"lastResult,omitempty"`
	LastError  string               `json:"lastError,omitempty"`
}

// LogbookSyncJob pulls the remote logbook on a schedule.
type LogbookSyncJob struct {
	syncer      Syncer
	history     LastSyncLookup
	syncOnStart bool

	mu     sync.Mutex
	status JobStatus
}

// NewLogbookSyncJob creates the job. With syncOnStart false, the first run
// is skipped when the last successful sync is more recent than the interval.
func NewLogbookSyncJob(syncer Syncer, history LastSyncLookup, syncOnStart bool) *LogbookSyncJob {
	return &LogbookSyncJob{
		syncer:      syncer,
		history:     history,
		syncOnStart: syncOnStart,
	}
}

// Run executes one sync and records its outcome in the job status.
func (j *LogbookSyncJob) Run(ctx context.Context, trigger string) (services.SyncResult, error) {
	j.mu.Lock()
	j.status.Running = true
	j.mu.Unlock()

	start := time.Now()
	log.Printf("[LogbookSyncJob] Starting %s sync at %s", trigger, start.Format(time.RFC3339))

	result, err := j.syncer.Sync(ctx, trigger)

	j.mu.Lock()
	j.status.Running = false
	j.status.LastRunAt = &start
	j.status.LastResult = &result
	j.status.LastError = ""
	if err != nil {
		j.status.LastError = err.Error()
	}
	j.mu.Unlock()

	if err != nil {
		log.Printf("[LogbookSyncJob] Sync failed after %s: %v", time.Since(start).Truncate(time.Millisecond), err)
		return result, err
	}

	log.Printf("[LogbookSyncJob] Completed sync in %s. Records: %d",
		time.Since(start).Truncate(time.Millisecond), result.Records)
	return result, nil
}

// Status returns a copy of the current job status.
func (j *LogbookSyncJob) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *LogbookSyncJob) shouldRunInitialSync(ctx context.Context, interval time.Duration) bool {
	if j.syncOnStart || j.history == nil {
		return true
	}

	lastSyncTime, err := j.history.GetLastSyncTime(ctx, constants.SyncEventFullSync)
	if err != nil {
		log.Printf("[LogbookSyncJob] Error checking last sync time: %v. Running sync anyway.", err)
		return true
	}

	if lastSyncTime == nil {
		log.Printf("[LogbookSyncJob] No previous sync found. Running initial sync.")
		return true
	}

	timeSinceLastSync := time.Since(*lastSyncTime)
	if timeSinceLastSync > interval {
		log.Printf("[LogbookSyncJob] Last sync was %s ago. Running sync.", timeSinceLastSync.Truncate(time.Second))
		return true
	}

	log.Printf("[LogbookSyncJob] Last sync was %s ago. Skipping initial sync.", timeSinceLastSync.Truncate(time.Second))
	return false
}

// RunScheduled syncs every interval until ctx is cancelled.
func (j *LogbookSyncJob) RunScheduled(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Printf("[LogbookSyncJob] Scheduled sync disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if j.shouldRunInitialSync(ctx, interval) {
		if _, err := j.Run(ctx, constants.SyncSourceScheduled); err != nil {
			log.Printf("[LogbookSyncJob] Error in initial run: %v", err)
		}
	}

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx, constants.SyncSourceScheduled); err != nil {
				log.Printf("[LogbookSyncJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[LogbookSyncJob] Shutting down scheduled sync")
			return
		}
	}
}
