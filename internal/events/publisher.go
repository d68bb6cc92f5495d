package events

import (
	"context"
	"sync"

	"washbook/pkg/kafka"
	"washbook/pkg/logger"
	"washbook/pkg/model"
)

const schemaVersion = "1"

// Publisher announces committed booking changes.
type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}

// MessageProducer is the part of kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessageProducer
	source   string
}

func NewKafkaPublisher(producer MessageProducer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

// Publish keys the message by booking id so one booking's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithEventID(event.ID).
		WithEventType(event.Type).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt).
		WithValue(event).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// NoopPublisher drops events; used when Kafka is disabled.
type NoopPublisher struct {
	log *logger.Logger
}

func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	p.log.Debug("Booking event not published, kafka disabled", "type", event.Type, "booking_id", event.BookingID)
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []model.BookingEvent
}

func (r *Recorder) Publish(ctx context.Context, event model.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []model.BookingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.BookingEvent(nil), r.events...)
}
