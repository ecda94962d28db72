package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

var _ DocumentQueue = (*KafkaQueue)(nil)

// KafkaQueue publishes document lifecycle events to a kafka topic, keyed by
// document id so events of one document stay ordered within a partition.
type KafkaQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaQueue(brokers, topic string) (*KafkaQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}

	q := &KafkaQueue{
		producer: producer,
		topic:    topic,
	}

	// drain delivery reports; failed deliveries are logged, not surfaced
	go func() {
		for e := range producer.Events() {
			if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				logrus.Errorf("event delivery failed: %v", m.TopicPartition.Error)
			}
		}
	}()

	return q, nil
}

func (q *KafkaQueue) PublishChange(ctx context.Context, event *DocumentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return q.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &q.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.DocumentID),
		Value:          data,
	}, nil)
}

func (q *KafkaQueue) Close() error {
	q.producer.Flush(5000)
	q.producer.Close()
	return nil
}
