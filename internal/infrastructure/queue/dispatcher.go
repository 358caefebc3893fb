package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher deletes stored images in the background. Keys are routed to a
// fixed set of workers by hash, so repeated deletes of one key are ordered.
type Dispatcher struct {
	workers []chan string
	remover ports.ImageRemover
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers in front
// of remover. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, remover ports.ImageRemover, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		remover: remover,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and stop
// when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Delete enqueues key for deletion and returns. When the worker's queue is
// full the deletion runs inline instead of blocking the caller indefinitely.
func (d *Dispatcher) Delete(ctx context.Context, key string) error {
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- key:
		metrics.ImageDeleteQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		return d.remover.Delete(ctx, key)
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case key := <-ch:
			metrics.ImageDeleteQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, key)
		}
	}
}

// drain finishes queued deletions after shutdown was requested.
func (d *Dispatcher) drain(id int, ch <-chan string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for {
		select {
		case key := <-ch:
			d.process(ctx, id, key)
		default:
			metrics.ImageDeleteQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, key string) {
	start := time.Now()
	err := d.remover.Delete(ctx, key)
	metrics.ImageDeleteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ImageDeleteErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("key", key).
			Int("worker_id", id).
			Msg("image deletion failed")
	}
}

// asyncStore routes deletions through a Dispatcher and everything else to
// the wrapped store.
type asyncStore struct {
	ports.ImageStore
	d *Dispatcher
}

// AsyncStore wraps store so Delete is queued on d instead of run inline.
func AsyncStore(store ports.ImageStore, d *Dispatcher) ports.ImageStore {
	return &asyncStore{ImageStore: store, d: d}
}

func (s *asyncStore) Delete(ctx context.Context, key string) error {
	return s.d.Delete(ctx, key)
}
