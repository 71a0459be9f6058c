package record

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/neox5/pushbox/internal/config"
)

// TopicAttribute is set to the MQTT topic unless the envelope provides it.
const TopicAttribute = "mqtt.topic"

const mqttDisconnectQuiesce = 250 // milliseconds

// MQTTSource subscribes to a topic filter; each payload is a JSON envelope.
type MQTTSource struct {
	cfg     config.MQTTSourceConfig
	handler Handler
}

// NewMQTTSource creates an MQTT source.
func NewMQTTSource(cfg config.MQTTSourceConfig, handler Handler) *MQTTSource {
	return &MQTTSource{cfg: cfg, handler: handler}
}

// Name identifies the source in logs.
func (s *MQTTSource) Name() string { return "mqtt" }

// Run connects, subscribes and blocks until ctx is done.
func (s *MQTTSource) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			// Resubscribe on every (re)connect; clean sessions drop subscriptions.
			token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage(ctx))
			if token.Wait() && token.Error() != nil {
				slog.Error("mqtt subscribe failed", "topic", s.cfg.Topic, "error", token.Error())
				return
			}
			slog.Info("subscribed to mqtt topic", "broker", s.cfg.Broker, "topic", s.cfg.Topic, "qos", s.cfg.QoS)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			slog.Warn("mqtt connection lost", "broker", s.cfg.Broker, "error", err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to mqtt broker %s: %w", s.cfg.Broker, token.Error())
	}

	<-ctx.Done()

	client.Disconnect(mqttDisconnectQuiesce)
	slog.Info("mqtt source stopped", "broker", s.cfg.Broker)
	return nil
}

// onMessage decodes a payload and hands it to the handler.
func (s *MQTTSource) onMessage(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		rec, err := DecodeEnvelope(msg.Payload())
		if err != nil {
			slog.Warn("skipping mqtt message", "topic", msg.Topic(), "error", err)
			return
		}
		if _, exists := rec.Attributes[TopicAttribute]; !exists {
			rec.Attributes[TopicAttribute] = msg.Topic()
		}
		if err := s.handler.Handle(ctx, rec); err != nil {
			slog.Debug("mqtt record failed", "topic", msg.Topic(), "error", err)
		}
	}
}
