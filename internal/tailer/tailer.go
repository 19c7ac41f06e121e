// Package tailer follows a growing y2log file and emits complete parsed
// entries. Because a record's message may span physical lines, a line
// cannot be emitted as read: it stays buffered until the next
// record-start line (or a quiet period) proves the record is complete.
package tailer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/therealutkarshpriyadarshi/y2logs/internal/logging"
	"github.com/therealutkarshpriyadarshi/y2logs/internal/metrics"
	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

// Config configures a Tailer.
type Config struct {
	// Path of the y2log file to follow.
	Path string

	// FromStart reads the existing content before waiting for appends;
	// the default starts at the current end of file.
	FromStart bool

	// FlushTimeout is how long a buffered record may wait for a possible
	// continuation line before it is emitted anyway.
	FlushTimeout time.Duration

	// PollInterval is the wait between reads at end of file.
	PollInterval time.Duration
}

// Tailer follows one y2log file, surviving rotation.
type Tailer struct {
	cfg     Config
	logger  *logging.Logger
	metrics *metrics.Collector
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	file    *os.File
	reader  *bufio.Reader
	asm     assembler
	partial string

	entries  chan y2log.Entry
	lastData time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a Tailer. The metrics collector may be nil.
func New(cfg Config, logger *logging.Logger, collector *metrics.Collector) (*Tailer, error) {
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 2 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Tailer{
		cfg:     cfg,
		logger:  logger.WithComponent("tailer"),
		metrics: collector,
		watcher: watcher,
		entries: make(chan y2log.Entry, 1000),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start opens the file and begins following it.
func (t *Tailer) Start() error {
	if err := t.open(t.cfg.FromStart); err != nil {
		return err
	}

	// Watch the parent directory, not the file: a rotation removes the
	// watched path, and the Create event for its replacement only arrives
	// on the directory watch.
	if err := t.watcher.Add(filepath.Dir(t.cfg.Path)); err != nil {
		t.logger.Warn().Err(err).Str("path", t.cfg.Path).Msg("Failed to watch directory, relying on polling")
	}

	t.wg.Add(2)
	go t.readLoop()
	go t.watchLoop()

	return nil
}

// Stop stops the tailer and closes the entry channel.
func (t *Tailer) Stop() {
	t.cancel()
	t.watcher.Close()
	t.wg.Wait()

	t.mu.Lock()
	if t.file != nil {
		t.file.Close()
	}
	t.mu.Unlock()

	close(t.entries)
}

// Entries returns the channel of parsed entries.
func (t *Tailer) Entries() <-chan y2log.Entry {
	return t.entries
}

func (t *Tailer) open(fromStart bool) error {
	file, err := os.Open(t.cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if !fromStart {
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			file.Close()
			return fmt.Errorf("failed to seek file: %w", err)
		}
	}

	t.mu.Lock()
	if t.file != nil {
		t.file.Close()
	}
	t.file = file
	t.reader = bufio.NewReader(file)
	t.partial = ""
	t.mu.Unlock()

	return nil
}

// handleEvent reacts to filesystem events on the followed path.
func (t *Tailer) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(t.cfg.Path) {
		return
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Rotation. Emit whatever the old file left behind, then try the
		// replacement. The writer usually recreates the file on its next
		// write, so failure here is expected; the directory watch delivers
		// a Create event when the new file lands.
		t.logger.Info().Str("path", t.cfg.Path).Msg("File rotation detected")
		if t.metrics != nil {
			t.metrics.Rotations.Inc()
		}
		t.flushPending()
		if err := t.open(true); err != nil {
			t.logger.Debug().Err(err).Str("path", t.cfg.Path).Msg("Waiting for replacement file")
		}

	case event.Op&fsnotify.Create != 0:
		t.logger.Info().Str("path", t.cfg.Path).Msg("File created")
		if err := t.open(true); err != nil {
			t.logger.Error().Err(err).Str("path", t.cfg.Path).Msg("Failed to open file")
		}
	}
}

// readLoop reads physical lines and feeds the record assembler.
func (t *Tailer) readLoop() {
	defer t.wg.Done()

	for {
		select {
		case <-t.ctx.Done():
			return
		default:
		}

		t.mu.Lock()
		reader := t.reader
		t.mu.Unlock()

		line, err := reader.ReadString('\n')
		if err != nil {
			// A rotation swaps the reader out underneath an in-flight
			// read; the fresh reader is picked up next iteration. Any
			// other read error is retryable, never fatal: the loop is
			// the only reader and must outlive transient failures.
			swapped := errors.Is(err, os.ErrClosed)
			if err != io.EOF && !swapped {
				t.logger.Warn().Err(err).Str("path", t.cfg.Path).Msg("Error reading file")
			}
			// A partial line stays buffered until its newline lands.
			if line != "" && !swapped {
				t.mu.Lock()
				t.partial += line
				t.lastData = time.Now()
				t.mu.Unlock()
			} else if t.quietFor(t.cfg.FlushTimeout) {
				t.flushPending()
			}
			select {
			case <-time.After(t.cfg.PollInterval):
			case <-t.ctx.Done():
				return
			}
			continue
		}

		t.mu.Lock()
		full := t.partial + strings.TrimRight(line, "\r\n")
		t.partial = ""
		t.lastData = time.Now()
		record, complete := t.asm.Add(full)
		t.mu.Unlock()

		if complete {
			t.emit(record)
		}
	}
}

// quietFor reports whether a record is pending and no data arrived for d.
func (t *Tailer) quietFor(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.asm.Pending() && time.Since(t.lastData) > d
}

// flushPending emits the buffered record, if any.
func (t *Tailer) flushPending() {
	t.mu.Lock()
	record, ok := t.asm.Flush()
	t.mu.Unlock()

	if ok {
		t.emit(record)
	}
}

// emit parses one complete raw record and sends it on. Streaming is
// tolerant: a record that fails to parse is dropped and counted, the
// stream continues.
func (t *Tailer) emit(record string) {
	entries, err := y2log.Parse(record)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Dropping unparsable record")
		if t.metrics != nil {
			t.metrics.ParseFailures.Inc()
		}
		return
	}

	for _, entry := range entries {
		if t.metrics != nil {
			t.metrics.EntriesParsed.WithLabelValues(entry.Level.String()).Inc()
		}
		select {
		case t.entries <- entry:
		case <-t.ctx.Done():
			return
		}
	}
}

// watchLoop reacts to rotation events.
func (t *Tailer) watchLoop() {
	defer t.wg.Done()

	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			t.handleEvent(event)

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.logger.Error().Err(err).Msg("File watcher error")

		case <-t.ctx.Done():
			return
		}
	}
}

// assembler buffers the physical lines of one record until the next
// record-start line (digits then a hyphen) proves it complete.
type assembler struct {
	lines   []string
	started bool
}

// Add feeds one physical line without its trailing newline. When the
// line starts a new record, the previously buffered record is returned
// complete. Lines seen before any record start (a follow that began
// mid-message) are discarded.
func (a *assembler) Add(line string) (string, bool) {
	if y2log.StartsEntry(line) {
		record, ok := a.Flush()
		a.lines = append(a.lines[:0], line)
		a.started = true
		return record, ok
	}

	if !a.started {
		return "", false
	}

	a.lines = append(a.lines, line)
	return "", false
}

// Pending reports whether a record is buffered.
func (a *assembler) Pending() bool {
	return a.started
}

// Flush returns the buffered record, if any, and resets the assembler.
func (a *assembler) Flush() (string, bool) {
	if !a.started {
		return "", false
	}
	record := strings.Join(a.lines, "\n")
	a.lines = a.lines[:0]
	a.started = false
	return record, true
}
