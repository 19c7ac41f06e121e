// Package config loads the YAML sink configuration consumed by the
// export command. Filtering itself needs no configuration file; only
// destination addresses and credentials live here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/therealutkarshpriyadarshi/y2logs/internal/export"
)

// Config is the root of a sinks file. Every configured sink receives the
// full filtered entry set.
type Config struct {
	Elasticsearch *export.ElasticsearchConfig `yaml:"elasticsearch,omitempty"`
	Kafka         *export.KafkaConfig         `yaml:"kafka,omitempty"`
	S3            *export.S3Config            `yaml:"s3,omitempty"`
}

// Load reads and validates a sinks file. Environment variables in the
// YAML content are expanded, so credentials can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sinks file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sinks file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sinks file: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset fields of each configured sink.
func (c *Config) applyDefaults() {
	if c.Elasticsearch != nil {
		def := export.DefaultElasticsearchConfig()
		if len(c.Elasticsearch.Addresses) == 0 {
			c.Elasticsearch.Addresses = def.Addresses
		}
		if c.Elasticsearch.Index == "" {
			c.Elasticsearch.Index = def.Index
		}
		if c.Elasticsearch.IndexRotation == "" {
			c.Elasticsearch.IndexRotation = def.IndexRotation
		}
		applyBaseDefaults(&c.Elasticsearch.BaseConfig)
	}

	if c.Kafka != nil {
		def := export.DefaultKafkaConfig()
		if len(c.Kafka.Brokers) == 0 {
			c.Kafka.Brokers = def.Brokers
		}
		if c.Kafka.Topic == "" {
			c.Kafka.Topic = def.Topic
		}
		if c.Kafka.CompressionCodec == "" {
			c.Kafka.CompressionCodec = def.CompressionCodec
		}
		if c.Kafka.ClientID == "" {
			c.Kafka.ClientID = def.ClientID
		}
		if c.Kafka.Version == "" {
			c.Kafka.Version = def.Version
		}
		applyBaseDefaults(&c.Kafka.BaseConfig)
	}

	if c.S3 != nil {
		def := export.DefaultS3Config()
		if c.S3.Region == "" {
			c.S3.Region = def.Region
		}
		if c.S3.Prefix == "" {
			c.S3.Prefix = def.Prefix
		}
		if c.S3.KeyTemplate == "" {
			c.S3.KeyTemplate = def.KeyTemplate
		}
		if c.S3.Compression == "" {
			c.S3.Compression = def.Compression
		}
		applyBaseDefaults(&c.S3.BaseConfig)
	}
}

func applyBaseDefaults(base *export.BaseConfig) {
	def := export.DefaultBaseConfig()
	if base.BatchSize == 0 {
		base.BatchSize = def.BatchSize
	}
	if base.FlushInterval == 0 {
		base.FlushInterval = def.FlushInterval
	}
	if base.Timeout == 0 {
		base.Timeout = def.Timeout
	}
}

// Validate rejects configurations that cannot possibly work.
func (c *Config) Validate() error {
	if c.Elasticsearch == nil && c.Kafka == nil && c.S3 == nil {
		return fmt.Errorf("no sinks configured")
	}

	if c.Kafka != nil && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka: no topic specified")
	}
	if c.S3 != nil && c.S3.Bucket == "" {
		return fmt.Errorf("s3: no bucket specified")
	}
	if c.Elasticsearch != nil && c.Elasticsearch.RequestsPerSecond < 0 {
		return fmt.Errorf("elasticsearch: requests_per_second must not be negative")
	}

	for name, base := range map[string]*export.BaseConfig{
		"elasticsearch": esBase(c.Elasticsearch),
		"kafka":         kafkaBase(c.Kafka),
		"s3":            s3Base(c.S3),
	} {
		if base == nil {
			continue
		}
		if base.BatchSize < 0 {
			return fmt.Errorf("%s: batch_size must not be negative", name)
		}
		if base.FlushInterval < 0 {
			return fmt.Errorf("%s: flush_interval must not be negative", name)
		}
	}

	return nil
}

func esBase(c *export.ElasticsearchConfig) *export.BaseConfig {
	if c == nil {
		return nil
	}
	return &c.BaseConfig
}

func kafkaBase(c *export.KafkaConfig) *export.BaseConfig {
	if c == nil {
		return nil
	}
	return &c.BaseConfig
}

func s3Base(c *export.S3Config) *export.BaseConfig {
	if c == nil {
		return nil
	}
	return &c.BaseConfig
}
