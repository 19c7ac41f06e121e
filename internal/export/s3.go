package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

// S3Config contains S3-specific configuration.
type S3Config struct {
	BaseConfig `yaml:",inline"`

	// Bucket is the S3 bucket name.
	Bucket string `yaml:"bucket"`

	// Region is the AWS region.
	Region string `yaml:"region"`

	// Prefix is the key prefix for objects.
	Prefix string `yaml:"prefix,omitempty"`

	// KeyTemplate templates object keys from the first entry's timestamp.
	KeyTemplate string `yaml:"key_template,omitempty"`

	// Compression is none, gzip or snappy.
	Compression CompressionType `yaml:"compression,omitempty"`

	// Endpoint for S3-compatible services (e.g. MinIO).
	Endpoint string `yaml:"endpoint,omitempty"`

	// UsePathStyle forces path-style addressing.
	UsePathStyle bool `yaml:"use_path_style,omitempty"`
}

// DefaultS3Config returns default S3 configuration.
func DefaultS3Config() S3Config {
	return S3Config{
		BaseConfig:  DefaultBaseConfig(),
		Region:      "us-east-1",
		Prefix:      "y2logs/",
		KeyTemplate: "{{.Year}}/{{.Month}}/{{.Day}}/{{.Timestamp}}.ndjson",
		Compression: CompressionNone,
	}
}

// S3Exporter uploads entry batches as NDJSON objects to S3.
type S3Exporter struct {
	config     S3Config
	client     *s3.Client
	batcher    *Batcher
	compressor Compressor
	closed     atomic.Bool
}

// NewS3Exporter creates a new S3 exporter.
func NewS3Exporter(ctx context.Context, config S3Config) (*S3Exporter, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("no bucket specified")
	}
	if config.Region == "" {
		return nil, fmt.Errorf("no region specified")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var opts []func(*s3.Options)
	if config.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	compressor, err := GetCompressor(config.Compression)
	if err != nil {
		return nil, err
	}

	e := &S3Exporter{
		config:     config,
		client:     s3.NewFromConfig(cfg, opts...),
		compressor: compressor,
	}

	if config.BatchSize > 1 {
		e.batcher = NewBatcher(BatcherConfig{
			MaxBatchSize:  config.BatchSize,
			MaxBatchBytes: 100 * 1024 * 1024,
			FlushInterval: config.FlushInterval,
		}, e.uploadBatch)
	}

	return e, nil
}

// Send ships a single entry, through the batcher when one is configured.
func (e *S3Exporter) Send(ctx context.Context, entry y2log.Entry) error {
	if e.closed.Load() {
		return fmt.Errorf("s3 exporter is closed")
	}

	if e.batcher != nil {
		return e.batcher.Add(ctx, entry)
	}

	return e.uploadBatch(ctx, []y2log.Entry{entry})
}

// SendBatch ships a batch of entries as one object.
func (e *S3Exporter) SendBatch(ctx context.Context, entries []y2log.Entry) error {
	if e.closed.Load() {
		return fmt.Errorf("s3 exporter is closed")
	}

	return e.uploadBatch(ctx, entries)
}

// uploadBatch serializes entries as NDJSON, compresses and uploads them.
func (e *S3Exporter) uploadBatch(ctx context.Context, entries []y2log.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		data, err := json.Marshal(NewDocument(entry))
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	data, err := e.compressor.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(e.config.Bucket),
		Key:         aws.String(e.objectKey(entries[0].Timestamp)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
	}
	if e.config.Compression != CompressionNone && e.config.Compression != "" {
		input.ContentEncoding = aws.String(string(e.config.Compression))
	}

	if _, err := e.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// objectKey generates an object key from the template and a timestamp.
func (e *S3Exporter) objectKey(timestamp time.Time) string {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	key := e.config.KeyTemplate
	if key == "" {
		key = "{{.Timestamp}}.ndjson"
	}

	replacements := map[string]string{
		"{{.Year}}":      fmt.Sprintf("%04d", timestamp.Year()),
		"{{.Month}}":     fmt.Sprintf("%02d", timestamp.Month()),
		"{{.Day}}":       fmt.Sprintf("%02d", timestamp.Day()),
		"{{.Hour}}":      fmt.Sprintf("%02d", timestamp.Hour()),
		"{{.Timestamp}}": fmt.Sprintf("%d", timestamp.Unix()),
	}
	for placeholder, value := range replacements {
		key = strings.ReplaceAll(key, placeholder, value)
	}

	key = e.config.Prefix + key

	switch e.config.Compression {
	case CompressionGzip:
		key += ".gz"
	case CompressionSnappy:
		key += ".snappy"
	}

	return key
}

// Close flushes the batcher and marks the exporter closed.
func (e *S3Exporter) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	if e.batcher != nil {
		return e.batcher.Stop()
	}

	return nil
}

// Name returns the sink name.
func (e *S3Exporter) Name() string {
	if e.config.Name != "" {
		return e.config.Name
	}
	return "s3"
}
