package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/exam-engine/internal/events"
)

// EventConfig selects where session lifecycle events go
type EventConfig struct {
	Enabled      bool   `env:"EVENTS_ENABLED" envDefault:"false"`
	Publisher    string `env:"EVENTS_PUBLISHER" envDefault:"kafka"` // kafka or mock
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	SessionTopic string `env:"SESSION_EVENTS_TOPIC" envDefault:"exam-sessions"`
}

// GetKafkaBrokers splits KafkaBrokers, dropping empty entries
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher returns the Kafka publisher when events are enabled
// with the kafka backend. Anything else records events in memory only.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	kind := strings.ToLower(strings.TrimSpace(c.Publisher))
	if c.Enabled && kind == "kafka" {
		logger.Info("Publishing session events to Kafka",
			"brokers", c.KafkaBrokers,
			"topic", c.SessionTopic)
		publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.SessionTopic,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return publisher, nil
	}

	switch {
	case !c.Enabled:
		logger.Info("Event publishing disabled, using mock publisher")
	case kind != "mock":
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
	}
	return events.NewMockEventPublisher(logger), nil
}
