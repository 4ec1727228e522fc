package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
)

// eventEnvelope is the wire shape for state events on the topic.
type eventEnvelope struct {
	Kind      string      `json:"kind"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// StateEventPublisher forwards committed state events to a Kafka topic
// so external consumers (dashboards, audit) can follow the core's
// state changes.
type StateEventPublisher struct {
	writer *kafka.Writer
}

func NewStateEventPublisher(brokers []string, topic string) *StateEventPublisher {
	return &StateEventPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *StateEventPublisher) PublishEvent(ctx context.Context, event domain.Event) error {
	msg, err := json.Marshal(eventEnvelope{
		Kind:      event.Kind(),
		Payload:   event,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Kind()),
		Value: msg,
	})
}

func (p *StateEventPublisher) Close() error {
	return p.writer.Close()
}
