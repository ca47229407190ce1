package workers

import (
	"context"

	"heli-training/logbook/internal/config"
	"heli-training/logbook/internal/metrics"
	"heli-training/logbook/internal/providers"
)

type WorkersContainer struct {
	Dispatcher *MutationDispatcher
}

// InitWorkers starts the background workers. Call Close on shutdown so
// queued pushes are flushed.
func InitWorkers(ctx context.Context, cfg config.Config, pusher providers.RemotePusher, m *metrics.MetricsRegistry) *WorkersContainer {
	dispatcher := NewMutationDispatcher(pusher, cfg.PushWorkers, cfg.PushQueueSize, m)
	dispatcher.Start(ctx)

	return &WorkersContainer{
		Dispatcher: dispatcher,
	}
}

// Close stops all workers.
func (c *WorkersContainer) Close() {
	c.Dispatcher.Close()
}
