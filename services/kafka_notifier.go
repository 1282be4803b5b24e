package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"
)

const orderCreatedTopic = "order.created"

// KafkaNotifier publishes order-created events to a Kafka topic consumed by
// the admin notification worker.
type KafkaNotifier struct {
	producer sarama.SyncProducer
}

// NewKafkaNotifier connects a synchronous producer to the given broker.
func NewKafkaNotifier(broker string) (*KafkaNotifier, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer([]string{broker}, cfg)
	if err != nil {
		return nil, err
	}

	log.Printf("Kafka producer connected to %s", broker)
	return &KafkaNotifier{producer: producer}, nil
}

type orderCreatedEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		OrderID  uint   `json:"order_id"`
		UniqueID string `json:"unique_id"`
	} `json:"data"`
}

// NotifyOrderCreated publishes the event. Errors are returned for the caller
// to log; delivery is best-effort by contract.
func (k *KafkaNotifier) NotifyOrderCreated(orderID uint, uniqueID string) error {
	event := orderCreatedEvent{EventType: "custom_order_created"}
	event.Data.OrderID = orderID
	event.Data.UniqueID = uniqueID

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: orderCreatedTopic,
		Key:   sarama.StringEncoder(uniqueID),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

// Close shuts the underlying producer down.
func (k *KafkaNotifier) Close() error {
	return k.producer.Close()
}
