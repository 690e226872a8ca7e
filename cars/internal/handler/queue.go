package handler

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	cb "github.com/Astemirdum/cars-service/pkg/circuit_breaker"
)

var publishBreaker = cb.Config{
	Window:       20,
	FailureRatio: 0.5,
	Cooldown:     30 * time.Second,
	Probes:       3,
}

// NewEnqueuer publishes through producer. A nil producer drops every message.
// While the broker keeps failing, messages are rejected with cb.ErrOpen without touching the producer.
func NewEnqueuer(producer sarama.SyncProducer) Enqueuer {
	if producer == nil {
		return noopEnqueuer{}
	}
	return &enqueuerImpl{
		producer: producer,
		breaker:  cb.New(publishBreaker),
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
	breaker  cb.CircuitBreaker
}

func (q *enqueuerImpl) Enqueue(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.ByteEncoder(data)}
	return q.breaker.Call(func() error {
		_, _, err := q.producer.SendMessage(msg)
		return err
	})
}

type noopEnqueuer struct{}

func (noopEnqueuer) Enqueue(string, any) error { return nil }
