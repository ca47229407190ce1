package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/services"
)

// Mock Syncer
type mockSyncer struct {
	calls    atomic.Int32
	syncFunc func(ctx context.Context, trigger string) (services.SyncResult, error)
}

func (m *mockSyncer) Sync(ctx context.Context, trigger string) (services.SyncResult, error) {
	m.calls.Add(1)
	if m.syncFunc != nil {
		return m.syncFunc(ctx, trigger)
	}
	return services.SyncResult{Success: true, Records: 3}, nil
}

// Mock LastSyncLookup
type mockHistory struct {
	last *time.Time
	err  error
}

func (m *mockHistory) GetLastSyncTime(ctx context.Context, event string) (*time.Time, error) {
	return m.last, m.err
}

func TestLogbookSyncJob_RunRecordsStatus(t *testing.T) {
	job := NewLogbookSyncJob(&mockSyncer{}, nil, true)

	result, err := job.Run(context.Background(), constants.SyncSourceManual)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Records != 3 {
		t.Errorf("Expected 3 records, got %d", result.Records)
	}

	status := job.Status()
	if status.Running || status.LastRunAt == nil || status.LastError != "" {
		t.Errorf("Unexpected status %+v", status)
	}
}

func TestLogbookSyncJob_RunKeepsError(t *testing.T) {
	syncer := &mockSyncer{syncFunc: func(ctx context.Context, trigger string) (services.SyncResult, error) {
		return services.SyncResult{}, errors.New("remote down")
	}}
	job := NewLogbookSyncJob(syncer, nil, true)

	if _, err := job.Run(context.Background(), constants.SyncSourceManual); err == nil {
		t.Fatal("Expected an error")
	}
	if job.Status().LastError != "remote down" {
		t.Errorf("Expected last error to be kept, got %q", job.Status().LastError)
	}
}

func TestLogbookSyncJob_ShouldRunInitialSync(t *testing.T) {
	recent := time.Now().Add(-time.Minute)
	old := time.Now().Add(-time.Hour)
	ctx := context.Background()

	cases := []struct {
		name        string
		syncOnStart bool
		history     *mockHistory
		want        bool
	}{
		{"sync on start", true, &mockHistory{last: &recent}, true},
		{"never synced", false, &mockHistory{}, true},
		{"lookup error", false, &mockHistory{err: errors.New("db down")}, true},
		{"recent sync", false, &mockHistory{last: &recent}, false},
		{"stale sync", false, &mockHistory{last: &old}, true},
	}
	for _, c := range cases {
		job := NewLogbookSyncJob(&mockSyncer{}, c.history, c.syncOnStart)
		if got := job.shouldRunInitialSync(ctx, 15*time.Minute); got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestLogbookSyncJob_RunScheduledStopsOnCancel(t *testing.T) {
	syncer := &mockSyncer{}
	job := NewLogbookSyncJob(syncer, nil, true)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		job.RunScheduled(ctx, time.Hour)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for syncer.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("Expected the initial sync to run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected RunScheduled to return after cancel")
	}
}
