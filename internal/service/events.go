package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Well-known event topics.
const (
	TopicUserRegistered     = "user.registered"
	TopicReservationCreated = "reservation.created"
	TopicReservationPaid    = "reservation.paid"
	TopicEscrowReleased     = "escrow.released"
	TopicEscrowRefunded     = "escrow.refunded"
)

// EventPublisher publishes domain events. Publishing is fire and
// forget: a broker failure never fails the request that produced the
// event.
type EventPublisher interface {
	Publish(topic, key string, value any)
}

// KafkaPublisher publishes events to Kafka.
type KafkaPublisher struct {
	writer *kafkago.Writer
}

// NewKafkaPublisher creates a publisher against the given brokers.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish serialises value as JSON and writes it asynchronously.
func (p *KafkaPublisher) Publish(topic, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("event publish: marshal %s: %v", topic, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := p.writer.WriteMessages(ctx, kafkago.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: data,
		})
		if err != nil {
			log.Printf("event publish: %s: %v", topic, err)
		}
	}()
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops all events. Used when Kafka is not configured.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(topic, key string, value any) {}

// Ensure publishers implement EventPublisher.
var (
	_ EventPublisher = (*KafkaPublisher)(nil)
	_ EventPublisher = NopPublisher{}
)
