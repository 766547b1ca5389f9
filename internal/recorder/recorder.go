// Package recorder writes walk history to the store without blocking the
// user interface.
//
// Architecture:
//
//	TUI / REPL → Record → buffered channel → flush goroutine → Store
//
// The flush goroutine commits a batch every FlushInterval or BatchSize
// events, whichever comes first. Practice attempts are rare and are written
// as they arrive.
package recorder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Mr-Dark-debug/ambiscope/internal/database"
)

// tracer traces with key 'ambiscope.recorder'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.recorder")
}

// Sink is the part of the store the recorder writes to.
type Sink interface {
	BatchRecordEvents(events []*database.CursorEvent) error
	RecordAttempt(a *database.PracticeAttempt) error
}

// Metrics tracks throughput and error rates.
type Metrics struct {
	EventsRecorded   int64 `json:"events_recorded"`
	AttemptsRecorded int64 `json:"attempts_recorded"`
	BatchesCommitted int64 `json:"batches_committed"`
	Dropped          int64 `json:"dropped"`
	ErrorCount       int64 `json:"error_count"`
}

// Config holds the batching parameters.
type Config struct {
	// BatchSize is the maximum number of events to buffer before flushing.
	BatchSize int `json:"batch_size"`

	// FlushInterval is the maximum time between batch flushes.
	FlushInterval time.Duration `json:"flush_interval"`
}

// DefaultConfig returns the batching defaults. A person pressing keys
// produces few events, so batches stay small.
func DefaultConfig() Config {
	return Config{
		BatchSize:     64,
		FlushInterval: 500 * time.Millisecond,
	}
}

// record is one queued item: an event or an attempt.
type record struct {
	event   *database.CursorEvent
	attempt *database.PracticeAttempt
}

// Recorder buffers history records and writes them in batches.
type Recorder struct {
	config  Config
	sink    Sink
	metrics Metrics

	// Events and attempts share one queue so they reach the sink in the
	// order they were recorded.
	queue chan record

	mu      sync.Mutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
	stopped bool
}

// New creates a recorder writing to sink. It does nothing until Start.
func New(config Config, sink Sink) *Recorder {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = DefaultConfig().FlushInterval
	}
	return &Recorder{
		config: config,
		sink:   sink,
		queue:  make(chan record, config.BatchSize*2),
	}
}

// Start launches the flush goroutine and returns. Cancelling ctx flushes
// and ends the goroutine; call Stop to wait for it.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.flushLoop(ctx)
}

// Stop flushes everything buffered and waits for the flush goroutine.
// Records arriving after Stop are dropped.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if r.stopped || !r.started {
		r.stopped = true
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	m := r.Metrics()
	tracer().Infof("recorder stopped: %d events in %d batches, %d dropped, %d errors",
		m.EventsRecorded, m.BatchesCommitted, m.Dropped, m.ErrorCount)
}

// Record queues an event. It never blocks; when the buffer is full the
// event is dropped and counted.
func (r *Recorder) Record(e *database.CursorEvent) {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixNano()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		atomic.AddInt64(&r.metrics.Dropped, 1)
		return
	}
	select {
	case r.queue <- record{event: e}:
	default:
		atomic.AddInt64(&r.metrics.Dropped, 1)
		tracer().Errorf("event buffer full, dropping %q", e.Action)
	}
}

// Attempt queues a practice attempt. Like Record it never blocks.
func (r *Recorder) Attempt(a *database.PracticeAttempt) {
	if a.Timestamp == 0 {
		a.Timestamp = time.Now().UnixNano()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		atomic.AddInt64(&r.metrics.Dropped, 1)
		return
	}
	select {
	case r.queue <- record{attempt: a}:
	default:
		atomic.AddInt64(&r.metrics.Dropped, 1)
	}
}

// Metrics returns a snapshot of the counters.
func (r *Recorder) Metrics() Metrics {
	return Metrics{
		EventsRecorded:   atomic.LoadInt64(&r.metrics.EventsRecorded),
		AttemptsRecorded: atomic.LoadInt64(&r.metrics.AttemptsRecorded),
		BatchesCommitted: atomic.LoadInt64(&r.metrics.BatchesCommitted),
		Dropped:          atomic.LoadInt64(&r.metrics.Dropped),
		ErrorCount:       atomic.LoadInt64(&r.metrics.ErrorCount),
	}
}

// flushLoop periodically flushes buffered events to the store.
func (r *Recorder) flushLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.FlushInterval)
	defer ticker.Stop()

	buf := make([]*database.CursorEvent, 0, r.config.BatchSize)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		if err := r.sink.BatchRecordEvents(buf); err != nil {
			tracer().Errorf("flushing %d events: %v", len(buf), err)
			atomic.AddInt64(&r.metrics.ErrorCount, 1)
		} else {
			atomic.AddInt64(&r.metrics.EventsRecorded, int64(len(buf)))
			atomic.AddInt64(&r.metrics.BatchesCommitted, 1)
		}
		buf = make([]*database.CursorEvent, 0, r.config.BatchSize)
	}

	handle := func(rec record) {
		if rec.event != nil {
			buf = append(buf, rec.event)
			if len(buf) >= r.config.BatchSize {
				flush()
			}
			return
		}
		// Events queued before the attempt are written first.
		flush()
		if err := r.sink.RecordAttempt(rec.attempt); err != nil {
			tracer().Errorf("recording attempt: %v", err)
			atomic.AddInt64(&r.metrics.ErrorCount, 1)
			return
		}
		atomic.AddInt64(&r.metrics.AttemptsRecorded, 1)
	}

	for {
		select {
		case <-ctx.Done():
			r.drain(handle)
			flush()
			return

		case rec := <-r.queue:
			handle(rec)

		case <-ticker.C:
			flush()
		}
	}
}

// drain empties the queue without blocking. Stop holds no lock while
// waiting, but marks the recorder stopped first, so nothing new arrives.
func (r *Recorder) drain(handle func(record)) {
	for {
		select {
		case rec := <-r.queue:
			handle(rec)
		default:
			return
		}
	}
}
