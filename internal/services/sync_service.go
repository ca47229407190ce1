package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/db/repositories"
	"heli-training/logbook/internal/ingest"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/metrics"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/providers"
	"heli-training/logbook/internal/store"
)

// SyncRecorder keeps the outcome of sync runs.
type SyncRecorder interface {
	RecordSync(ctx context.Context, outcome repositories.SyncOutcome) error
}

// SyncResult summarises one sync run.
type SyncResult struct {
	Success             bool          `json:"success"`
	Records             int           `json:"records"`
	RejectedFlights     int           `json:"rejectedFlights"`
	RejectedValidations int           `json:"rejectedValidations"`
	ReusedIDs           int           `json:"reusedIds"`
	MintedIDs           int           `json:"mintedIds"`
	Duration            time.Duration `json:"duration"`
}

// SyncService replaces the local logbook with the remote one. The remote
// validation sheet decides every record's review state.
type SyncService struct {
	source  providers.RemoteSource
	store   store.RecordStore
	mapper  *ingest.RowMapper
	history SyncRecorder
	metrics *metrics.MetricsRegistry
	newID   ingest.IDGenerator

	// one sync at a time
	mu sync.Mutex
}

func NewSyncService(
	source providers.RemoteSource,
	s store.RecordStore,
	loc *time.Location,
	history SyncRecorder,
	m *metrics.MetricsRegistry,
) *SyncService {
	return &SyncService{
		source:  source,
		store:   s,
		mapper:  ingest.NewRowMapper(loc),
		history: history,
		metrics: m,
		newID:   ingest.NewUUID,
	}
}

// Sync pulls both remote tables and, when both arrive intact, replaces the
// local collection in one step. On any failure the local store is untouched.
func (svc *SyncService) Sync(ctx context.Context, trigger string) (SyncResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	start := time.Now()
	logging.Info("[SyncService] Starting logbook sync", "source", trigger)

	result, err := svc.run(ctx)
	result.Duration = time.Since(start)

	if err != nil {
		logging.Error("[SyncService] Sync failed, local logbook left untouched", "source", trigger, "error", err)
		svc.observe(trigger, "error", result)
		svc.record(ctx, repositories.SyncOutcome{
			Event:  constants.SyncEventSyncFailed,
			Source: trigger,
			Err:    err,
		})
		return result, err
	}

	result.Success = true
	svc.observe(trigger, "success", result)
	svc.record(ctx, repositories.SyncOutcome{
		Event:        constants.SyncEventFullSync,
		Source:       trigger,
		RowsAccepted: result.Records,
		RowsRejected: result.RejectedFlights + result.RejectedValidations,
	})

	logging.Info("[SyncService] Completed logbook sync",
		"source", trigger,
		"records", result.Records,
		"rejected_flights", result.RejectedFlights,
		"rejected_validations", result.RejectedValidations,
		"reused_ids", result.ReusedIDs,
		"minted_ids", result.MintedIDs,
		"duration", result.Duration.Truncate(time.Millisecond).String(),
	)
	return result, nil
}

func (svc *SyncService) run(ctx context.Context) (SyncResult, error) {
	var (
		result         SyncResult
		flightRows     []models.RemoteRow
		validationRows []models.RemoteRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := svc.source.FetchTable(gctx, constants.RemoteTableFlights)
		if err != nil {
			return fmt.Errorf("failed to pull %s: %w", constants.RemoteTableFlights, err)
		}
		flightRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := svc.source.FetchTable(gctx, constants.RemoteTableValidations)
		if err != nil {
			return fmt.Errorf("failed to pull %s: %w", constants.RemoteTableValidations, err)
		}
		validationRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return result, err
	}

	mapped, rejectedFlights := svc.mapper.MapFlightRows(flightRows)
	index, rejectedValidations := ingest.BuildValidationIndex(validationRows)
	for _, rej := range rejectedValidations {
		logging.Warn("[SyncService] Skipping validation row", "row", rej.Index, "reason", rej.Reason)
	}

	reconciled := ingest.Reconcile(mapped, svc.store.List(ctx), svc.newID)
	records := ingest.MergeValidations(reconciled.Records, index)

	if err := svc.store.Replace(ctx, records); err != nil {
		return result, fmt.Errorf("failed to replace local logbook: %w", err)
	}

	result.Records = len(records)
	result.RejectedFlights = len(rejectedFlights)
	result.RejectedValidations = len(rejectedValidations)
	result.ReusedIDs = reconciled.Reused
	result.MintedIDs = reconciled.Minted
	return result, nil
}

func (svc *SyncService) observe(trigger, outcome string, result SyncResult) {
	if svc.metrics == nil {
		return
	}
	svc.metrics.SyncRunsTotal.WithLabelValues(trigger, outcome).Inc()
	svc.metrics.SyncDuration.Observe(result.Duration.Seconds())
	if outcome != "success" {
		return
	}
	svc.metrics.SyncRowsAcceptedTotal.Add(float64(result.Records))
	svc.metrics.SyncRowsRejectedTotal.WithLabelValues(constants.RemoteTableFlights).Add(float64(result.RejectedFlights))
	svc.metrics.SyncRowsRejectedTotal.WithLabelValues(constants.RemoteTableValidations).Add(float64(result.RejectedValidations))
	svc.metrics.RecordsStored.Set(float64(result.Records))
}

func (svc *SyncService) record(ctx context.Context, outcome repositories.SyncOutcome) {
	if svc.history == nil {
		return
	}
	if err := svc.history.RecordSync(ctx, outcome); err != nil {
		logging.Warn("[SyncService] Failed to record sync history", "event", outcome.Event, "error", err)
	}
}
