package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/neox5/pushbox/internal/config"
)

// Attributes added to every Kafka record unless a header already sets them.
const (
	KafkaTopicAttribute = "kafka.topic"
	KafkaKeyAttribute   = "kafka.key"
)

// KafkaSource consumes topics as a consumer group. Message headers become
// attributes and the message value is the record body.
type KafkaSource struct {
	cfg     config.KafkaSourceConfig
	handler Handler
}

// NewKafkaSource creates a Kafka source.
func NewKafkaSource(cfg config.KafkaSourceConfig, handler Handler) *KafkaSource {
	return &KafkaSource{cfg: cfg, handler: handler}
}

// Name identifies the source in logs.
func (s *KafkaSource) Name() string { return "kafka" }

// Run joins the consumer group and consumes until ctx is done.
func (s *KafkaSource) Run(ctx context.Context) error {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaCfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(s.cfg.Brokers, s.cfg.Group, saramaCfg)
	if err != nil {
		return fmt.Errorf("failed to create kafka consumer group: %w", err)
	}
	defer group.Close()

	go func() {
		for err := range group.Errors() {
			slog.Warn("kafka consumer error", "group", s.cfg.Group, "error", err)
		}
	}()

	slog.Info("consuming kafka topics", "brokers", s.cfg.Brokers, "topics", s.cfg.Topics, "group", s.cfg.Group)

	handler := &consumerGroupHandler{handler: s.handler}
	for {
		// Consume returns on every rebalance and must be called again.
		if err := group.Consume(ctx, s.cfg.Topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("kafka consume: %w", err)
		}
		if ctx.Err() != nil {
			slog.Info("kafka source stopped", "group", s.cfg.Group)
			return nil
		}
	}
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler.
type consumerGroupHandler struct {
	handler Handler
}

func (h *consumerGroupHandler) Setup(session sarama.ConsumerGroupSession) error {
	slog.Debug("kafka session set up", "claims", session.Claims())
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim hands each message to the handler and marks it afterwards;
// a failed record is not redelivered.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handler.Handle(session.Context(), recordFromMessage(msg)); err != nil {
				slog.Debug("kafka record failed", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func recordFromMessage(msg *sarama.ConsumerMessage) Record {
	rec := Record{
		Attributes: make(map[string]string, len(msg.Headers)+2),
		Body:       msg.Value,
	}
	for _, h := range msg.Headers {
		if h == nil {
			continue
		}
		rec.Attributes[string(h.Key)] = string(h.Value)
	}
	if _, exists := rec.Attributes[KafkaTopicAttribute]; !exists {
		rec.Attributes[KafkaTopicAttribute] = msg.Topic
	}
	if _, exists := rec.Attributes[KafkaKeyAttribute]; !exists && msg.Key != nil {
		rec.Attributes[KafkaKeyAttribute] = string(msg.Key)
	}
	return rec
}
