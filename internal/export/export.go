// Package export ships filtered y2log entries to external sinks
// (Elasticsearch, Kafka, S3).
package export

import (
	"context"
	"time"

	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

// Exporter is implemented by every sink.
type Exporter interface {
	// Send ships a single entry.
	Send(ctx context.Context, entry y2log.Entry) error

	// SendBatch ships a batch of entries.
	SendBatch(ctx context.Context, entries []y2log.Entry) error

	// Close flushes buffered entries and releases resources.
	Close() error

	// Name identifies the sink in logs and metrics.
	Name() string
}

// CompressionType defines the compression algorithm for sinks that store
// whole objects (S3).
type CompressionType string

const (
	CompressionNone   CompressionType = "none"
	CompressionGzip   CompressionType = "gzip"
	CompressionSnappy CompressionType = "snappy"
)

// BaseConfig contains settings common to all sinks.
type BaseConfig struct {
	// Name overrides the sink's default identifier.
	Name string `yaml:"name,omitempty"`

	// BatchSize is the number of entries per batch; values <= 1 disable
	// batching and every entry is shipped individually.
	BatchSize int `yaml:"batch_size,omitempty"`

	// FlushInterval bounds how long a partial batch may wait.
	FlushInterval time.Duration `yaml:"flush_interval,omitempty"`

	// Timeout bounds a single send operation.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DefaultBaseConfig returns a base config with sensible defaults.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		BatchSize:     100,
		FlushInterval: 1 * time.Second,
		Timeout:       30 * time.Second,
	}
}

// Document is the JSON shape of an exported entry: location flattened,
// level by name, timestamp in the file's own second-precision layout.
type Document struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Hostname  string `json:"hostname"`
	PID       int    `json:"pid"`
	Component string `json:"component"`
	File      string `json:"file"`
	Method    string `json:"method,omitempty"`
	Line      int    `json:"line,omitempty"`
	Message   string `json:"message"`
}

// NewDocument converts an entry to its export document.
func NewDocument(e y2log.Entry) Document {
	return Document{
		Timestamp: e.Timestamp.Format(y2log.TimeLayout),
		Level:     e.Level.String(),
		Hostname:  e.Hostname,
		PID:       int(e.PID),
		Component: e.Component,
		File:      e.Location.File,
		Method:    e.Location.Method,
		Line:      e.Location.Line,
		Message:   e.Message,
	}
}
