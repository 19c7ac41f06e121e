package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"golang.org/x/time/rate"

	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

// ElasticsearchConfig contains Elasticsearch-specific configuration.
type ElasticsearchConfig struct {
	BaseConfig `yaml:",inline"`

	// Addresses is the list of Elasticsearch node URLs.
	Addresses []string `yaml:"addresses"`

	// Index is the index name; with rotation enabled a time suffix is
	// appended per entry timestamp.
	Index string `yaml:"index"`

	// IndexRotation is daily, monthly or none.
	IndexRotation string `yaml:"index_rotation,omitempty"`

	// Username and Password for basic authentication.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// APIKey for key-based authentication.
	APIKey string `yaml:"api_key,omitempty"`

	// RequestsPerSecond caps bulk requests client-side; zero means no
	// limit. Useful when exporting a large installer log into a small
	// cluster in one go.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// DefaultElasticsearchConfig returns default Elasticsearch configuration.
func DefaultElasticsearchConfig() ElasticsearchConfig {
	return ElasticsearchConfig{
		BaseConfig:    DefaultBaseConfig(),
		Addresses:     []string{"http://localhost:9200"},
		Index:         "y2logs",
		IndexRotation: "daily",
	}
}

// ElasticsearchExporter bulk-indexes entries into Elasticsearch.
type ElasticsearchExporter struct {
	config  ElasticsearchConfig
	client  *elasticsearch.Client
	batcher *Batcher
	limiter *rate.Limiter
	closed  atomic.Bool
}

// NewElasticsearchExporter creates a new Elasticsearch exporter and
// verifies the cluster is reachable.
func NewElasticsearchExporter(config ElasticsearchConfig) (*ElasticsearchExporter, error) {
	if len(config.Addresses) == 0 {
		return nil, fmt.Errorf("no addresses specified")
	}
	if config.Index == "" {
		return nil, fmt.Errorf("no index specified")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
		APIKey:    config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned error: %s", res.Status())
	}

	e := &ElasticsearchExporter{
		config: config,
		client: client,
	}

	if config.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	if config.BatchSize > 1 {
		e.batcher = NewBatcher(BatcherConfig{
			MaxBatchSize:  config.BatchSize,
			MaxBatchBytes: 10 * 1024 * 1024,
			FlushInterval: config.FlushInterval,
		}, e.bulkIndex)
	}

	return e, nil
}

// Send ships a single entry, through the batcher when one is configured.
func (e *ElasticsearchExporter) Send(ctx context.Context, entry y2log.Entry) error {
	if e.closed.Load() {
		return fmt.Errorf("elasticsearch exporter is closed")
	}

	if e.batcher != nil {
		return e.batcher.Add(ctx, entry)
	}

	return e.bulkIndex(ctx, []y2log.Entry{entry})
}

// SendBatch ships a batch of entries with a single bulk request.
func (e *ElasticsearchExporter) SendBatch(ctx context.Context, entries []y2log.Entry) error {
	if e.closed.Load() {
		return fmt.Errorf("elasticsearch exporter is closed")
	}

	return e.bulkIndex(ctx, entries)
}

// bulkIndex sends entries using the Bulk API.
func (e *ElasticsearchExporter) bulkIndex(ctx context.Context, entries []y2log.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		meta, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": e.indexName(entry.Timestamp)},
		})
		if err != nil {
			return fmt.Errorf("failed to marshal bulk action: %w", err)
		}
		doc, err := json.Marshal(NewDocument(entry))
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := e.client.Bulk(bytes.NewReader(buf.Bytes()), e.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request returned error: %s", res.Status())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("failed to parse bulk response: %w", err)
	}

	if bulkResp.Errors {
		var failed int
		for _, item := range bulkResp.Items {
			for _, doc := range item {
				if doc.Status >= 400 {
					failed++
				}
			}
		}
		return fmt.Errorf("%d out of %d entries failed to index", failed, len(entries))
	}

	return nil
}

// indexName returns the index for an entry, with optional time rotation.
func (e *ElasticsearchExporter) indexName(timestamp time.Time) string {
	switch e.config.IndexRotation {
	case "daily":
		return fmt.Sprintf("%s-%s", e.config.Index, timestamp.Format("2006.01.02"))
	case "monthly":
		return fmt.Sprintf("%s-%s", e.config.Index, timestamp.Format("2006.01"))
	default:
		return e.config.Index
	}
}

// Close flushes the batcher and marks the exporter closed.
func (e *ElasticsearchExporter) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	if e.batcher != nil {
		return e.batcher.Stop()
	}

	return nil
}

// Name returns the sink name.
func (e *ElasticsearchExporter) Name() string {
	if e.config.Name != "" {
		return e.config.Name
	}
	return "elasticsearch"
}
