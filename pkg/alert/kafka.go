package alert

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes notifications to an outbound-SMS topic for a
// downstream sender service to deliver.
type KafkaNotifier struct {
	writer *kafkago.Writer
}

// NewKafkaNotifier creates a Kafka producer for the given brokers and topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaNotifier{writer: w}
}

func (k *KafkaNotifier) Name() string { return "kafka" }

func (k *KafkaNotifier) Send(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}
	msg := kafkago.Message{
		// Keyed by phone so a recipient's messages stay ordered within a partition.
		Key:   []byte(n.Phone),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(n.Severity)},
			{Key: "alert_id", Value: []byte(n.AlertID)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
