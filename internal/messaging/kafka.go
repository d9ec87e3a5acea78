package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/internal/fix"
)

// Topics published by the platform.
const (
	TopicParsedMessages = "fix.messages.parsed"
	TopicRawMessages    = "fix.messages.raw"
)

// Config contains Kafka producer settings.
type Config struct {
	Brokers      []string      `json:"brokers" yaml:"brokers"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	BatchSize    int           `json:"batch_size" yaml:"batch_size"`
	BatchTimeout time.Duration `json:"batch_timeout" yaml:"batch_timeout"`
	RequiredAcks int           `json:"required_acks" yaml:"required_acks"`
	Compression  string        `json:"compression" yaml:"compression"`
	RetryMax     int           `json:"retry_max" yaml:"retry_max"`
}

// DefaultConfig returns producer settings suitable for a single local
// broker.
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		WriteTimeout: 1 * time.Second,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: 1,
		Compression:  "snappy",
		RetryMax:     3,
	}
}

// Producer forwards decoded messages downstream. The pipeline has no
// dependency on delivery success; callers log failures and move on.
type Producer interface {
	PublishParsed(ctx context.Context, msg *fix.Message) error
	PublishRaw(ctx context.Context, sessionID, raw string) error
	Close() error
}

// KafkaProducer implements Producer on top of segmentio/kafka-go with one
// lazily created writer per topic.
type KafkaProducer struct {
	config  *Config
	writers map[string]*kafka.Writer
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewKafkaProducer creates a Kafka-backed producer.
func NewKafkaProducer(config *Config, logger *zap.Logger) *KafkaProducer {
	if config == nil {
		config = DefaultConfig()
	}
	return &KafkaProducer{
		config:  config,
		writers: make(map[string]*kafka.Writer),
		logger:  logger,
	}
}

func (p *KafkaProducer) getWriter(topic string) *kafka.Writer {
	p.mu.RLock()
	writer, exists := p.writers[topic]
	p.mu.RUnlock()
	if exists {
		return writer
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer = &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.CRC32Balancer{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		WriteTimeout: p.config.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		MaxAttempts:  p.config.RetryMax,
	}

	switch p.config.Compression {
	case "gzip":
		writer.Compression = kafka.Gzip
	case "lz4":
		writer.Compression = kafka.Lz4
	case "zstd":
		writer.Compression = kafka.Zstd
	default:
		writer.Compression = kafka.Snappy
	}

	p.writers[topic] = writer
	return writer
}

// PublishParsed publishes the structured message keyed by sender and
// sequence number, so per-sender ordering survives partitioning.
func (p *KafkaProducer) PublishParsed(ctx context.Context, msg *fix.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	key := msg.SenderCompID + "-" + strconv.Itoa(msg.MsgSeqNum)
	return p.publish(ctx, TopicParsedMessages, key, data)
}

// PublishRaw publishes the original wire text keyed by session.
func (p *KafkaProducer) PublishRaw(ctx context.Context, sessionID, raw string) error {
	return p.publish(ctx, TopicRawMessages, sessionID, []byte(raw))
}

func (p *KafkaProducer) publish(ctx context.Context, topic, key string, value []byte) error {
	writer := p.getWriter(topic)
	err := writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes every topic writer.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer for %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return firstErr
}

// NopProducer discards everything. It stands in when the message queue is
// disabled in configuration.
type NopProducer struct{}

func (NopProducer) PublishParsed(context.Context, *fix.Message) error { return nil }
func (NopProducer) PublishRaw(context.Context, string, string) error  { return nil }
func (NopProducer) Close() error                                      { return nil }
