package export

import (
	"context"
	"sync"
	"time"

	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

// BatcherConfig configures the batching behavior.
type BatcherConfig struct {
	MaxBatchSize  int
	MaxBatchBytes int
	FlushInterval time.Duration
}

// Batcher accumulates entries and flushes them in batches, either when a
// size threshold is reached or on the flush interval.
type Batcher struct {
	config  BatcherConfig
	entries []y2log.Entry
	bytes   int
	mu      sync.Mutex
	flushFn func(ctx context.Context, entries []y2log.Entry) error
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewBatcher creates a new batcher and starts its flush ticker.
func NewBatcher(config BatcherConfig, flushFn func(ctx context.Context, entries []y2log.Entry) error) *Batcher {
	b := &Batcher{
		config:  config,
		entries: make([]y2log.Entry, 0, config.MaxBatchSize),
		flushFn: flushFn,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	go b.flushLoop()

	return b
}

// Add appends an entry to the current batch, flushing if full.
func (b *Batcher) Add(ctx context.Context, entry y2log.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, entry)
	b.bytes += entrySize(entry)

	if len(b.entries) >= b.config.MaxBatchSize || (b.config.MaxBatchBytes > 0 && b.bytes >= b.config.MaxBatchBytes) {
		return b.flushLocked(ctx)
	}

	return nil
}

// Flush forces a flush of the current batch.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked(ctx)
}

// flushLocked flushes the current batch (must be called with lock held).
func (b *Batcher) flushLocked(ctx context.Context) error {
	if len(b.entries) == 0 {
		return nil
	}

	toFlush := make([]y2log.Entry, len(b.entries))
	copy(toFlush, b.entries)

	b.entries = b.entries[:0]
	b.bytes = 0

	// Flush without holding the lock.
	b.mu.Unlock()
	err := b.flushFn(ctx, toFlush)
	b.mu.Lock()

	return err
}

// flushLoop periodically flushes partial batches.
func (b *Batcher) flushLoop() {
	ticker := time.NewTicker(b.config.FlushInterval)
	defer ticker.Stop()
	defer close(b.doneCh)

	for {
		select {
		case <-ticker.C:
			b.Flush(context.Background())
		case <-b.stopCh:
			// Final flush on shutdown.
			b.Flush(context.Background())
			return
		}
	}
}

// Stop stops the batcher and flushes remaining entries.
func (b *Batcher) Stop() error {
	close(b.stopCh)
	<-b.doneCh
	return nil
}

// Size returns the current number of entries in the batch.
func (b *Batcher) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// entrySize approximates the wire size of an entry; the message dominates
// for multi-line records.
func entrySize(e y2log.Entry) int {
	return len(e.Message) + len(e.Hostname) + len(e.Component) + len(e.Location.File) + len(e.Location.Method) + 64
}
