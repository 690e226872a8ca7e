package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const RatingTopic = "cars.rating"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
}

func (cfg Config) Enabled() bool {
	return len(cfg.Addrs) > 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

// RatingEvent is published once per stored rating.
type RatingEvent struct {
	ID        int64     `json:"id"`
	CarID     int64     `json:"carId"`
	Rate      int       `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}
