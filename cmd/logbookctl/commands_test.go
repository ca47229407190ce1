package main

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"heli-training/logbook/internal/api"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/providers"
	"heli-training/logbook/internal/workers"
)

func TestParseStatusFlag(t *testing.T) {
	if s, err := parseStatusFlag(""); err != nil || s != "" {
		t.Errorf("Expected empty filter, got %q, %v", s, err)
	}
	if s, err := parseStatusFlag("validated"); err != nil || s != models.ValidationValidated {
		t.Errorf("Expected validated, got %q, %v", s, err)
	}
	if _, err := parseStatusFlag("approved"); err == nil {
		t.Error("Expected an error for an unknown status")
	}
}

func TestPrintFlights(t *testing.T) {
	var buf bytes.Buffer
	err := printFlights(&buf, []models.FlightLog{{
		ID:             "f1",
		Date:           models.NewDate(2024, 9, 1),
		StudentName:    "TRUJILLO",
		Session:        "VBAS-1",
		InstructorName: "DRIS",
		FlightType:     models.FlightTypeSimulator,
		TotalTime:      45,
	}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one row, got %d lines", len(lines))
	}
	for _, want := range []string{"f1", "2024-09-01", "TRUJILLO", "VBAS-1", "S", "0.75", "pending"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("Expected row to contain %q, got %q", want, lines[1])
		}
	}
}

type testPush struct{}

func (testPush) Action() string   { return "validate" }
func (testPush) Subject() string  { return "2024-09-01|TRUJILLO|VBAS-1" }
func (testPush) Form() url.Values { return url.Values{} }

type recordingPusher struct {
	mu    sync.Mutex
	count int
}

func (p *recordingPusher) Push(ctx context.Context, req providers.PushRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return nil
}

func TestCloseDependencies_FlushesQueuedPushes(t *testing.T) {
	pusher := &recordingPusher{}
	dispatcher := workers.NewMutationDispatcher(pusher, 1, 4, nil)
	dispatcher.Start(context.Background())
	if !dispatcher.Dispatch(testPush{}) {
		t.Fatal("Expected push to be queued")
	}

	deps = &api.Dependencies{Workers: &workers.WorkersContainer{Dispatcher: dispatcher}}
	closeDependencies()
	closeDependencies()

	if deps != nil {
		t.Errorf("Expected dependencies to be cleared, got %+v", deps)
	}
	pusher.mu.Lock()
	defer pusher.mu.Unlock()
	if pusher.count != 1 {
		t.Errorf("Expected 1 flushed push, got %d", pusher.count)
	}
}
