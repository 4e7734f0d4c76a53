package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/usecase/webhook"
	pkgmqtt "fleet-tracker/pkg/mqtt"

	"go.uber.org/zap"
)

// Subscriber feeds MQTT-delivered platform payloads into the same processing
// pipeline as the HTTP webhook. The upstream platform can publish device
// messages, intervals and events over its MQTT broker as an alternative to
// HTTP streams.
type Subscriber struct {
	cfg       *config.MQTTConfig
	client    *pkgmqtt.Client
	processor *webhook.Service
	metrics   *MetricsTracker

	mu      sync.Mutex
	started bool
	topic   string
}

// NewSubscriber builds an MQTT subscriber. An empty broker is a configuration
// error; callers should skip construction when MQTT is not configured.
func NewSubscriber(cfg *config.MQTTConfig, processor *webhook.Service, metrics *MetricsTracker) (*Subscriber, error) {
	if cfg == nil || cfg.Broker == "" {
		return nil, errors.New("mqtt broker is not configured")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}
	if metrics == nil {
		metrics = NewMetricsTracker()
	}

	client := pkgmqtt.NewClient(&pkgmqtt.Config{
		Broker:               cfg.Broker,
		ClientID:             cfg.ClientID,
		Username:             cfg.Username,
		Password:             cfg.Password,
		CleanSession:         true,
		KeepAlive:            30,
		ConnectTimeout:       10,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
	})

	topic := cfg.Topic
	if topic == "" {
		topic = "flespi/+/telematics"
	}

	return &Subscriber{
		cfg:       cfg,
		client:    client,
		processor: processor,
		metrics:   metrics,
		topic:     topic,
	}, nil
}

// Start connects and subscribes. Safe to call more than once.
func (s *Subscriber) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	if err := s.client.Subscribe(s.topic, 1, s.handleMessage); err != nil {
		s.client.Disconnect()
		return fmt.Errorf("subscribe failed for topic %s: %w", s.topic, err)
	}

	s.started = true
	logger.Info("mqtt ingestion started", zap.String("topic", s.topic))
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if err := s.client.Unsubscribe(s.topic); err != nil {
		logger.Warn("failed to unsubscribe from MQTT topic", zap.Error(err))
	}

	s.client.Disconnect()
	s.started = false
}

// Metrics returns a snapshot of the ingestion counters.
func (s *Subscriber) Metrics() IngestMetrics {
	return s.metrics.Snapshot()
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.metrics.Update(func(m *IngestMetrics) {
		m.MessagesReceived++
	})

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		logger.Warn("invalid mqtt payload",
			zap.String("topic", topic),
			zap.Error(err),
		)
		s.metrics.Update(func(m *IngestMetrics) {
			m.RecordsFailed++
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary := s.processor.Process(ctx, doc)
	s.metrics.Update(func(m *IngestMetrics) {
		m.RecordsProcessed += int64(summary.Processed)
		m.RecordsFailed += int64(summary.Failed)
		m.LastProcessedAt = time.Now()
		m.LastPayloadErrors = summary.Errors
	})
}
