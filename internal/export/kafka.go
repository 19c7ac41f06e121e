package export

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/IBM/sarama"

	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

// KafkaConfig contains Kafka-specific configuration.
type KafkaConfig struct {
	BaseConfig `yaml:",inline"`

	// Brokers is the list of Kafka broker addresses.
	Brokers []string `yaml:"brokers"`

	// Topic is the Kafka topic to send entries to.
	Topic string `yaml:"topic"`

	// RequiredAcks specifies the number of acknowledgments required
	// (0, 1, -1).
	RequiredAcks int16 `yaml:"required_acks,omitempty"`

	// CompressionCodec specifies the codec (none, gzip, snappy, lz4, zstd).
	CompressionCodec string `yaml:"compression_codec,omitempty"`

	// ClientID is the client identifier.
	ClientID string `yaml:"client_id,omitempty"`

	// Version is the Kafka protocol version.
	Version string `yaml:"version,omitempty"`

	// SASL configuration.
	SASLEnabled  bool   `yaml:"sasl_enabled,omitempty"`
	SASLUsername string `yaml:"sasl_username,omitempty"`
	SASLPassword string `yaml:"sasl_password,omitempty"`

	// EnableTLS enables TLS for connections.
	EnableTLS bool `yaml:"enable_tls,omitempty"`
}

// DefaultKafkaConfig returns default Kafka configuration.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		BaseConfig:       DefaultBaseConfig(),
		Brokers:          []string{"localhost:9092"},
		Topic:            "y2logs",
		RequiredAcks:     1,
		CompressionCodec: "snappy",
		ClientID:         "y2logs",
		Version:          "3.0.0",
	}
}

// KafkaExporter produces entries to a Kafka topic. Messages are keyed by
// component so that one subsystem's entries stay on one partition, in
// order.
type KafkaExporter struct {
	config   KafkaConfig
	producer sarama.SyncProducer
	closed   atomic.Bool
}

// NewKafkaExporter creates a new Kafka exporter.
func NewKafkaExporter(config KafkaConfig) (*KafkaExporter, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("no brokers specified")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("no topic specified")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.RequiredAcks(config.RequiredAcks)
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	saramaConfig.ClientID = config.ClientID

	switch config.CompressionCodec {
	case "gzip":
		saramaConfig.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		saramaConfig.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		saramaConfig.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		saramaConfig.Producer.Compression = sarama.CompressionZSTD
	default:
		saramaConfig.Producer.Compression = sarama.CompressionNone
	}

	if config.Version != "" {
		version, err := sarama.ParseKafkaVersion(config.Version)
		if err != nil {
			return nil, fmt.Errorf("invalid Kafka version: %w", err)
		}
		saramaConfig.Version = version
	}

	if config.SASLEnabled {
		saramaConfig.Net.SASL.Enable = true
		saramaConfig.Net.SASL.User = config.SASLUsername
		saramaConfig.Net.SASL.Password = config.SASLPassword
	}

	if config.EnableTLS {
		saramaConfig.Net.TLS.Enable = true
	}

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaExporter{
		config:   config,
		producer: producer,
	}, nil
}

// Send ships a single entry.
func (k *KafkaExporter) Send(ctx context.Context, entry y2log.Entry) error {
	if k.closed.Load() {
		return fmt.Errorf("kafka exporter is closed")
	}

	msg, err := k.buildMessage(entry)
	if err != nil {
		return err
	}

	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// SendBatch ships a batch of entries.
func (k *KafkaExporter) SendBatch(ctx context.Context, entries []y2log.Entry) error {
	if k.closed.Load() {
		return fmt.Errorf("kafka exporter is closed")
	}

	messages := make([]*sarama.ProducerMessage, 0, len(entries))
	for _, entry := range entries {
		msg, err := k.buildMessage(entry)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}

	if err := k.producer.SendMessages(messages); err != nil {
		return fmt.Errorf("failed to send messages to Kafka: %w", err)
	}

	return nil
}

// buildMessage creates a producer message from an entry.
func (k *KafkaExporter) buildMessage(entry y2log.Entry) (*sarama.ProducerMessage, error) {
	value, err := json.Marshal(NewDocument(entry))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.config.Topic,
		Value: sarama.ByteEncoder(value),
	}
	if entry.Component != "" {
		msg.Key = sarama.StringEncoder(entry.Component)
	}

	return msg, nil
}

// Close closes the producer.
func (k *KafkaExporter) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}

	if k.producer != nil {
		return k.producer.Close()
	}

	return nil
}

// Name returns the sink name.
func (k *KafkaExporter) Name() string {
	if k.config.Name != "" {
		return k.config.Name
	}
	return "kafka"
}
