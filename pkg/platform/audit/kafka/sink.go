// Package kafka provides an audit.Store implementation that publishes events
// to a Kafka topic. Compliance events need durable, replayable storage
// outside the service's own database; the topic is the integration point for
// downstream retention pipelines.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	id "tranchor/pkg/domain"
	audit "tranchor/pkg/platform/audit"
)

// Producer is the subset of kgo.Client the sink needs. Narrowed for unit
// testing with a fake.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Sink publishes audit events to a Kafka topic. It satisfies audit.Store;
// reads are not supported (events are consumed downstream).
type Sink struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// New connects to the brokers, ensures the audit topic exists, and returns a
// ready sink.
func New(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Topic may already exist; anything else is fatal.
		exists, lerr := topicExists(ctx, adm, topic)
		if lerr != nil || !exists {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic %q: %w", topic, err)
		}
	}

	return &Sink{producer: client, topic: topic, logger: logger}, nil
}

// NewWithProducer wires a sink around an existing producer. Used in tests.
func NewWithProducer(producer Producer, topic string, logger *slog.Logger) *Sink {
	return &Sink{producer: producer, topic: topic, logger: logger}
}

func topicExists(ctx context.Context, adm *kadm.Client, topic string) (bool, error) {
	details, err := adm.ListTopics(ctx, topic)
	if err != nil {
		return false, err
	}
	return details.Has(topic), nil
}

// Append publishes the event keyed by participant so per-participant ordering
// is preserved within a partition.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Participant),
		Value: payload,
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "audit event publish failed",
				"topic", s.topic,
				"action", event.Action,
				"error", err,
			)
		}
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// ListByParticipant is unsupported: the topic is write-only from the engine's
// perspective. Pair the sink with a queryable store via Tee when reads are
// needed.
func (s *Sink) ListByParticipant(context.Context, id.ParticipantID) ([]audit.Event, error) {
	return nil, fmt.Errorf("kafka audit sink does not support reads")
}

// Close releases the underlying Kafka client.
func (s *Sink) Close() {
	s.producer.Close()
}

// Tee fans Append out to both stores and reads from the primary. Lets the
// engine keep a queryable store while also streaming to Kafka.
type Tee struct {
	Primary   audit.Store
	Secondary audit.Store
}

func (t *Tee) Append(ctx context.Context, event audit.Event) error {
	if err := t.Primary.Append(ctx, event); err != nil {
		return err
	}
	return t.Secondary.Append(ctx, event)
}

func (t *Tee) ListByParticipant(ctx context.Context, participant id.ParticipantID) ([]audit.Event, error) {
	return t.Primary.ListByParticipant(ctx, participant)
}
