package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSender implements Sender by queueing messages on a Kafka topic. The mail
// worker consumes the topic and performs the actual SMTP delivery.
type KafkaSender struct {
	writer *kafka.Writer
}

// NewKafkaSender creates a queued sender writing to the given topic.
// Call Close when shutting down.
func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaSender{writer: writer}
}

// Send serializes the message as JSON and writes it to the topic, keyed by
// recipient so retries for one address stay ordered.
func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(msg.To),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("queue mail for %s: %w", msg.To, err)
	}
	return nil
}

// Close closes the Kafka writer. Safe to call multiple times.
func (s *KafkaSender) Close() error {
	if s == nil || s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
