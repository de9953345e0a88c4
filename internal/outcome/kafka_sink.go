package outcome

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/batchguard/batchguard/internal/canonical"
)

// KafkaSinkConfig configures the Kafka outcome sink.
type KafkaSinkConfig struct {
	// Brokers is the list of Kafka broker addresses (host:port).
	Brokers []string

	// Topic is the topic outcome events are produced to.
	Topic string

	// MaxAttempts is how many times a produce is retried on transient
	// error. Defaults to 3 if <= 0.
	MaxAttempts int

	// WriteTimeout is the per-attempt timeout. Defaults to 10s if zero.
	WriteTimeout time.Duration
}

// KafkaSink produces canonical outcome envelopes to Kafka. The message key
// is the claim's identity key, so repeated scans of the same batch land on
// the same partition and stay ordered.
//
// Note: kafka-go's high-level Writer does not report partition/offset for
// produced messages; the emitter only needs success/failure.
type KafkaSink struct {
	writer      *kafka.Writer
	maxAttempts int
}

// NewKafkaSink constructs a KafkaSink or fails if brokers/topic are missing.
func NewKafkaSink(cfg KafkaSinkConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		// key-hash balancer keeps messages for one identity on one partition
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		Async:        false,
	})
	return &KafkaSink{writer: w, maxAttempts: cfg.MaxAttempts}, nil
}

// Emit produces the event envelope, retrying with capped exponential
// backoff before giving up.
func (k *KafkaSink) Emit(ctx context.Context, ev *Event) error {
	value, err := canonical.Marshal(ev.envelope())
	if err != nil {
		return fmt.Errorf("canonicalize outcome envelope: %w", err)
	}

	var lastErr error
	backoff := 100 * time.Millisecond
	for attempt := 1; attempt <= k.maxAttempts; attempt++ {
		msg := kafka.Message{
			Key:   []byte(ev.IdentityKey),
			Value: value,
			Time:  ev.Ts,
		}
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := k.writer.WriteMessages(attemptCtx, msg)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("produce outcome failed after %d attempts: %w", k.maxAttempts, lastErr)
}

// Close shuts down the underlying writer.
func (k *KafkaSink) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
