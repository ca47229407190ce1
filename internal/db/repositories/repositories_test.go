package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"heli-training/logbook/internal/db"
	"heli-training/logbook/internal/models"
	gormModels "heli-training/logbook/internal/models/gorm"
	"heli-training/logbook/internal/store"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	orm, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(orm); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return orm
}

func testFlight(id, student, session string) models.FlightLog {
	return models.FlightLog{
		ID:          id,
		Date:        models.NewDate(2024, time.September, 1),
		StudentName: student,
		Session:     session,
		FlightType:  models.FlightTypeReal,
		TotalTime:   90,
		Approaches:  []models.Approach{{Type: "ILS", Count: 2, Place: "LEGR"}},
	}
}

func ids(records []models.FlightLog) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func equalIDs(t *testing.T, got []models.FlightLog, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("Expected ids %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("Expected ids %v, got %v", want, gotIDs)
		}
	}
}

func TestFlightLogRepo_PutPrependsAndUpdatesInPlace(t *testing.T) {
	repo := NewFlightLogRepo(setupTestDB(t))
	ctx := context.Background()

	for _, f := range []models.FlightLog{
		testFlight("a", "TRUJILLO", "VBAS-1"),
		testFlight("b", "TRUJILLO", "VBAS-2"),
		testFlight("c", "GAYO", "VBAS-1"),
	} {
		if err := repo.Put(ctx, f); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	equalIDs(t, repo.List(ctx), "c", "b", "a")

	updated := testFlight("b", "TRUJILLO", "VBAS-2")
	updated.ValidationStatus = models.ValidationValidated
	updated.Grade = "7.5"
	if err := repo.Put(ctx, updated); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	records := repo.List(ctx)
	equalIDs(t, records, "c", "b", "a")
	if records[1].Grade != "7.5" || records[1].Status() != models.ValidationValidated {
		t.Errorf("Expected record b to be validated with grade 7.5, got %+v", records[1])
	}
	if len(records[1].Approaches) != 1 || records[1].Approaches[0].Place != "LEGR" {
		t.Errorf("Expected approaches to survive the round trip, got %+v", records[1].Approaches)
	}
	if records[1].Date.String() != "2024-09-01" {
		t.Errorf("Expected date 2024-09-01, got %s", records[1].Date)
	}
}

func TestFlightLogRepo_PutRejectsMissingID(t *testing.T) {
	repo := NewFlightLogRepo(setupTestDB(t))

	err := repo.Put(context.Background(), testFlight("", "TRUJILLO", "VBAS-1"))
	if !errors.Is(err, store.ErrMissingID) {
		t.Errorf("Expected ErrMissingID, got %v", err)
	}
}

func TestFlightLogRepo_GetDeleteClear(t *testing.T) {
	repo := NewFlightLogRepo(setupTestDB(t))
	ctx := context.Background()

	_ = repo.Put(ctx, testFlight("a", "TRUJILLO", "VBAS-1"))
	_ = repo.Put(ctx, testFlight("b", "GAYO", "VBAS-1"))

	if _, found := repo.Get(ctx, "a"); !found {
		t.Fatal("Expected record a to be found")
	}
	if _, found := repo.Get(ctx, "missing"); found {
		t.Error("Expected missing record not to be found")
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.Delete(ctx, "a"); err != nil {
		t.Errorf("Expected deleting twice to be a no-op, got %v", err)
	}
	equalIDs(t, repo.List(ctx), "b")

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := repo.List(ctx); len(got) != 0 {
		t.Errorf("Expected empty list after clear, got %d records", len(got))
	}
}

func TestFlightLogRepo_ReplaceKeepsOrder(t *testing.T) {
	repo := NewFlightLogRepo(setupTestDB(t))
	ctx := context.Background()

	_ = repo.Put(ctx, testFlight("old", "TRUJILLO", "VBAS-1"))

	err := repo.Replace(ctx, []models.FlightLog{
		testFlight("x", "TRUJILLO", "VBAS-1"),
		testFlight("y", "TRUJILLO", "VBAS-2"),
		testFlight("z", "GAYO", "VBAS-1"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	equalIDs(t, repo.List(ctx), "x", "y", "z")

	// A new Put still lands in front of replaced records
	_ = repo.Put(ctx, testFlight("new", "GAYO", "VBAS-2"))
	equalIDs(t, repo.List(ctx), "new", "x", "y", "z")
}

func TestFlightLogRepo_ReplaceWithBadRecordKeepsPrevious(t *testing.T) {
	repo := NewFlightLogRepo(setupTestDB(t))
	ctx := context.Background()

	_ = repo.Put(ctx, testFlight("keep", "TRUJILLO", "VBAS-1"))

	err := repo.Replace(ctx, []models.FlightLog{testFlight("", "GAYO", "VBAS-1")})
	if !errors.Is(err, store.ErrMissingID) {
		t.Fatalf("Expected ErrMissingID, got %v", err)
	}
	equalIDs(t, repo.List(ctx), "keep")
}

func TestFlightLogRepo_Aggregate(t *testing.T) {
	repo := NewFlightLogRepo(setupTestDB(t))
	ctx := context.Background()

	validated := testFlight("a", "TRUJILLO", "VBAS-1")
	validated.ValidationStatus = models.ValidationValidated
	_ = repo.Put(ctx, validated)
	_ = repo.Put(ctx, testFlight("b", "TRUJILLO", "VBAS-2"))

	got := repo.Aggregate(ctx, func(f models.FlightLog) bool { return f.IsValidated() })
	equalIDs(t, got, "a")
}

func TestSyncHistoryRepo_RecordSyncUpserts(t *testing.T) {
	repo := NewSyncHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	last, err := repo.GetLastSyncTime(ctx, "LOGBOOK_FULL_SYNC")
	if err != nil || last != nil {
		t.Fatalf("Expected no history, got %v, %v", last, err)
	}

	if err := repo.RecordSync(ctx, SyncOutcome{Event: "LOGBOOK_FULL_SYNC", Source: "manual", RowsAccepted: 3}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.RecordSync(ctx, SyncOutcome{Event: "LOGBOOK_FULL_SYNC", Source: "scheduled", RowsAccepted: 5, RowsRejected: 1}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.RecordSync(ctx, SyncOutcome{Event: "LOGBOOK_SYNC_FAILED", Source: "manual", Err: errors.New("boom")}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	history, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected one row per event, got %d", len(history))
	}

	byEvent := map[string]gormModels.SyncHistory{}
	for _, h := range history {
		byEvent[h.Event] = h
	}
	full := byEvent["LOGBOOK_FULL_SYNC"]
	if full.Source != "scheduled" || full.RowsAccepted != 5 || full.RowsRejected != 1 {
		t.Errorf("Expected latest run to overwrite, got %+v", full)
	}
	if byEvent["LOGBOOK_SYNC_FAILED"].LastError != "boom" {
		t.Errorf("Expected last error boom, got %q", byEvent["LOGBOOK_SYNC_FAILED"].LastError)
	}

	last, err = repo.GetLastSyncTime(ctx, "LOGBOOK_FULL_SYNC")
	if err != nil || last == nil {
		t.Fatalf("Expected a last sync time, got %v, %v", last, err)
	}
}

func TestLoginHistoryRepo_InsertAndTrim(t *testing.T) {
	orm := setupTestDB(t)
	sqlxDB, err := db.WrapORM(orm)
	if err != nil {
		t.Fatalf("Failed to wrap database: %v", err)
	}
	repo := NewLoginHistoryRepo(sqlxDB)
	repo.limit = 3
	ctx := context.Background()

	base := time.Date(2024, time.September, 1, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"admin", "dris", "prieto", "soriano"} {
		event := &gormModels.LoginEvent{
			Username:   name,
			Name:       name,
			Role:       "instructor",
			LoggedInAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Insert(ctx, event); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if event.ID == "" {
			t.Fatal("Expected an id to be assigned")
		}
	}

	events, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events after trimming, got %d", len(events))
	}
	if events[0].Username != "soriano" || events[2].Username != "dris" {
		t.Errorf("Expected newest first, got %s..%s", events[0].Username, events[2].Username)
	}
}
