package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/api/metrics"
	"github.com/silab/attendance-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher decouples the scan response from snapshot recomputation: a
// committed ledger event is enqueued here and a worker rebuilds and publishes
// the dashboard snapshot. Events are sharded by user id so one user's
// snapshots rebuild in commit order; cross-user order is irrelevant because
// snapshots are full replacements.
type Dispatcher struct {
	workers []chan ports.LedgerEvent
	service ports.DashboardService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.DashboardService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.LedgerEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LedgerEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify enqueues a committed ledger event for broadcast. Non-blocking up to
// channelBuffer capacity; the scan response never waits on delivery.
func (d *Dispatcher) Notify(event ports.LedgerEvent) {
	idx := d.shardIndex(event.UserID)
	d.workers[idx] <- event
	metrics.BroadcastQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LedgerEvent) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.BroadcastQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.service.OnLedgerChange(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("user_id", event.UserID).
					Int("worker_id", id).
					Msg("snapshot broadcast failed")
			}
		}
	}
}
