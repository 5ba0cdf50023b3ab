package srv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// flushTimeout bounds how long Close waits for queued messages when ctx has
// no deadline.
const flushTimeout = 5 * time.Second

// KafkaPublisher produces reports to a topic, keyed by session name.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	if brokers == "" {
		return nil, errors.New("kafka: no bootstrap servers")
	}
	if topic == "" {
		return nil, errors.New("kafka: empty topic")
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return nil, fmt.Errorf("kafka: creating producer: %w", err)
	}
	return &KafkaPublisher{producer: p, topic: topic}, nil
}

// Publish blocks until the broker acknowledges the message or ctx is done.
func (p *KafkaPublisher) Publish(ctx context.Context, r Report) error {
	body, err := r.encode()
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(r.Session),
		Value:          body,
	}
	if err := p.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("kafka: producing report: %w", err)
	}

	select {
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("kafka: unexpected delivery event %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("kafka: delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes queued messages until ctx's deadline, at most flushTimeout,
// and releases the producer.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.producer.Flush(int(flushWait(ctx) / time.Millisecond))
	p.producer.Close()
	return nil
}

func flushWait(ctx context.Context) time.Duration {
	wait := flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
	}
	if wait < 0 {
		return 0
	}
	return wait
}

func (p *KafkaPublisher) String() string {
	return "kafka topic " + p.topic
}
