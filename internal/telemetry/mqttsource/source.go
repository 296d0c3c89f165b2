// Package mqttsource feeds telemetry update events from an MQTT topic into a telemetry sink.
package mqttsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pingcard/pingcard/internal/logging"
	"github.com/pingcard/pingcard/internal/metrics"
	"github.com/pingcard/pingcard/internal/telemetry"
)

const (
	sourceLabel       = "mqtt"
	subscribeQoS      = 1
	disconnectQuiesce = 250 // milliseconds

	connectRetryInterval = 5 * time.Second
)

type Source struct {
	broker string
	topic  string
	sink   telemetry.Sink
	logger *slog.Logger

	client mqtt.Client
}

func New(broker, topic string, sink telemetry.Sink, logger *slog.Logger) (*Source, error) {
	broker = strings.TrimSpace(broker)
	topic = strings.TrimSpace(topic)
	if broker == "" {
		return nil, errors.New("mqtt broker is required")
	}
	if topic == "" {
		return nil, errors.New("mqtt topic is required")
	}
	if sink == nil {
		return nil, errors.New("telemetry sink is nil")
	}
	return &Source{
		broker: broker,
		topic:  topic,
		sink:   sink,
		logger: logging.Component(logger, logging.ComponentMQTT, "broker", broker, "topic", topic),
	}, nil
}

func (s *Source) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.broker)
	opts.SetClientID("pingcard-" + uuid.NewString()[:8])
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	// An unreachable broker at startup is retried like a lost connection.
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(connectRetryInterval)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(s.onConnectionLost)
	return opts
}

// Run connects to the broker and forwards messages until ctx is done. The
// initial connect keeps retrying until it succeeds or ctx ends.
func (s *Source) Run(ctx context.Context) error {
	s.client = mqtt.NewClient(s.clientOptions())
	s.logger.Info("connecting to mqtt broker")

	token := s.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("connect to mqtt broker: %w", err)
		}
	case <-ctx.Done():
		s.client.Disconnect(0)
		return nil
	}

	<-ctx.Done()
	if s.client.IsConnected() {
		s.client.Unsubscribe(s.topic)
	}
	s.client.Disconnect(disconnectQuiesce)
	s.logger.Info("mqtt source stopped")
	return nil
}

// onConnect subscribes on every (re)connection.
func (s *Source) onConnect(client mqtt.Client) {
	token := client.Subscribe(s.topic, subscribeQoS, s.handleMessage)
	if token.Wait() && token.Error() != nil {
		s.logger.Error("mqtt subscribe failed", "err", token.Error())
		return
	}
	s.logger.Info("subscribed to telemetry topic")
}

func (s *Source) onConnectionLost(_ mqtt.Client, err error) {
	s.logger.Warn("mqtt connection lost; reconnecting", "err", err)
}

func (s *Source) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	snap, err := telemetry.DecodeBytes(msg.Payload())
	if err != nil {
		metrics.TelemetryRejectedTotal.WithLabelValues(sourceLabel).Inc()
		s.logger.Warn("dropping invalid telemetry message", "message_topic", msg.Topic(), "err", err)
		return
	}
	s.sink.Publish(snap)
	metrics.TelemetryUpdatesTotal.WithLabelValues(sourceLabel).Inc()
}
