package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/metrics"
	"heli-training/logbook/internal/providers"
)

const defaultPushTimeout = 30 * time.Second

// MutationDispatcher sends pushes to the remote logbook in the background.
// Callers never wait on the network: a push is queued and forgotten. A push
// that fails is logged and counted, never retried. The next sync reconciles.
type MutationDispatcher struct {
	pusher      providers.RemotePusher
	metrics     *metrics.MetricsRegistry
	queue       chan providers.PushRequest
	numWorkers  int
	pushTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewMutationDispatcher creates a dispatcher. Start must be called before queued pushes are sent.
func NewMutationDispatcher(pusher providers.RemotePusher, numWorkers, queueSize int, m *metrics.MetricsRegistry) *MutationDispatcher {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &MutationDispatcher{
		pusher:      pusher,
		metrics:     m,
		queue:       make(chan providers.PushRequest, queueSize),
		numWorkers:  numWorkers,
		pushTimeout: defaultPushTimeout,
	}
}

// Start launches the workers. They keep sending until Close has drained the
// queue, even after ctx ends.
func (d *MutationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	logging.Info("[MutationDispatcher] Starting workers", "workers", d.numWorkers, "queue_size", cap(d.queue))
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		go func(workerName string) {
			defer d.wg.Done()
			d.run(ctx, workerName)
		}(fmt.Sprintf("push-worker-%d", i))
	}
}

// Dispatch queues a push without blocking. It reports false when the push
// was dropped because the queue is full or the dispatcher is closed.
func (d *MutationDispatcher) Dispatch(req providers.PushRequest) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped(req, "dispatcher closed")
		return false
	}

	select {
	case d.queue <- req:
		d.setDepth()
		return true
	default:
		d.dropped(req, "queue full")
		return false
	}
}

// Close stops accepting pushes and waits for queued ones to be sent.
func (d *MutationDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	logging.Info("[MutationDispatcher] All workers stopped")
}

// Pending returns the number of queued pushes.
func (d *MutationDispatcher) Pending() int {
	return len(d.queue)
}

func (d *MutationDispatcher) run(ctx context.Context, workerName string) {
	sent, failed := 0, 0
	for req := range d.queue {
		d.setDepth()
		if d.send(ctx, req) {
			sent++
		} else {
			failed++
		}
	}
	logging.Debug("[MutationDispatcher] Queue drained", "worker", workerName, "sent", sent, "failed", failed)
}

func (d *MutationDispatcher) send(ctx context.Context, req providers.PushRequest) bool {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.pushTimeout)
	defer cancel()

	start := time.Now()
	err := d.pusher.Push(pushCtx, req)
	if err != nil {
		logging.Warn("[MutationDispatcher] Push failed",
			"action", req.Action(),
			"subject", req.Subject(),
			"duration", time.Since(start).String(),
			"error", err,
		)
		d.count(req.Action(), "error")
		return false
	}

	logging.Debug("[MutationDispatcher] Push sent", "action", req.Action(), "subject", req.Subject(), "duration", time.Since(start).String())
	d.count(req.Action(), "ok")
	return true
}

func (d *MutationDispatcher) dropped(req providers.PushRequest, reason string) {
	logging.Warn("[MutationDispatcher] Push dropped", "action", req.Action(), "subject", req.Subject(), "reason", reason)
	if d.metrics != nil {
		d.metrics.PushesDroppedTotal.WithLabelValues(req.Action()).Inc()
	}
}

func (d *MutationDispatcher) count(action, result string) {
	if d.metrics != nil {
		d.metrics.PushesTotal.WithLabelValues(action, result).Inc()
	}
}

func (d *MutationDispatcher) setDepth() {
	if d.metrics != nil {
		d.metrics.PushQueueDepth.Set(float64(len(d.queue)))
	}
}
