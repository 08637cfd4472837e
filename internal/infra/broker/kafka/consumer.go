package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer runs a consumer group over the published event topics, for
// downstream processors like notification senders.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: g, handler: handler}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, consumerGroupHandler{handler: c.handler}); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.Handle(sess.Context(), message); err != nil {
			// retry/handling delegated to handler
			continue
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

// EventTopics lists the streams the outbox worker publishes to, with the
// optional deployment prefix applied.
func EventTopics(prefix string) []string {
	bases := []string{"booking.events.v1", "availability.events.v1"}
	if prefix == "" {
		return bases
	}
	topics := make([]string, len(bases))
	for i, base := range bases {
		topics[i] = prefix + base
	}
	return topics
}

// EventLogger is a MessageHandler that writes one structured line per consumed
// event. It is the default downstream processor: an audit trail of everything
// the outbox published.
type EventLogger struct {
	Logger *slog.Logger
}

type cloudEvent struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Source string `json:"source"`
	Time   string `json:"time"`
}

func (l EventLogger) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if l.Logger == nil {
		return nil
	}
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil || strings.TrimSpace(evt.Type) == "" {
		l.Logger.Warn("unparseable event consumed",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return nil
	}
	l.Logger.Info("event consumed",
		"type", evt.Type,
		"event_id", evt.ID,
		"aggregate", string(msg.Key),
		"topic", msg.Topic,
		"offset", msg.Offset,
	)
	return nil
}
