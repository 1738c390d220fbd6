package kafka

import (
	"context"
	"fmt"
	"strings"

	"teamnet-go/internal/config"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InstanceGroupID derives a consumer group id unique to this process from a
// shared base name. Used for fan-out topics where every instance must see
// every record instead of sharing partitions with its peers.
func InstanceGroupID(base string) string {
	return fmt.Sprintf("%s-%s", base, uuid.NewString())
}

// MessageHandler is a function type for processing consumed Kafka messages.
type MessageHandler func(ctx context.Context, msg *kafka.Message) error

// MessageConsumer defines the interface for a Kafka message consumer.
type MessageConsumer interface {
	Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error
	Close()
}

// confluentKafkaConsumer implements MessageConsumer using confluent-kafka-go.
type confluentKafkaConsumer struct {
	consumer *kafka.Consumer
	cfg      config.KafkaConfig
	groupID  string
	logger   *zap.Logger
}

// NewConfluentKafkaConsumer creates a new Kafka consumer instance. The group
// id is supplied per Consume call so one constructor serves every consumer
// in the process.
func NewConfluentKafkaConsumer(cfg config.KafkaConfig, logger *zap.Logger) (MessageConsumer, error) {
	return &confluentKafkaConsumer{cfg: cfg, logger: logger}, nil
}

// Consume starts consuming messages from the specified topics and group.
// Blocks until the context is canceled or a fatal broker error occurs.
// Offsets are committed manually after the handler returns nil, so handlers
// must be idempotent across redelivery.
func (c *confluentKafkaConsumer) Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error {
	if len(topics) == 0 {
		return fmt.Errorf("kafka consumer: no topics specified")
	}
	c.groupID = groupID

	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(c.cfg.Brokers, ","),
		"group.id":           c.groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false",
		"security.protocol":  c.cfg.Protocol,
	}
	if c.cfg.ClientID != "" {
		_ = configMap.SetKey("client.id", c.cfg.ClientID)
	}

	consumer, err := kafka.NewConsumer(configMap)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer for group %s: %w", groupID, err)
	}
	c.consumer = consumer

	if err := c.consumer.SubscribeTopics(topics, nil); err != nil {
		_ = c.consumer.Close()
		return fmt.Errorf("failed to subscribe to topics %v for group %s: %w", topics, groupID, err)
	}

	c.logger.Info("Kafka consumer started",
		zap.String("group", groupID), zap.Strings("topics", topics))

	run := true
	for run {
		select {
		case <-ctx.Done():
			c.logger.Info("context canceled, shutting down consumer", zap.String("group", groupID))
			run = false
		default:
			ev := c.consumer.Poll(1000)
			if ev == nil {
				continue // poll timeout
			}

			switch e := ev.(type) {
			case *kafka.Message:
				if err := handler(ctx, e); err != nil {
					c.logger.Error("error processing Kafka message",
						zap.String("group", groupID),
						zap.String("topic", *e.TopicPartition.Topic),
						zap.Int64("offset", int64(e.TopicPartition.Offset)),
						zap.Error(err))
				} else {
					if _, err := c.consumer.CommitMessage(e); err != nil {
						c.logger.Error("failed to commit offset",
							zap.String("group", groupID),
							zap.String("topic", *e.TopicPartition.Topic),
							zap.Int64("offset", int64(e.TopicPartition.Offset)),
							zap.Error(err))
					}
				}
			case kafka.Error:
				c.logger.Error("Kafka consumer error",
					zap.String("group", groupID),
					zap.Bool("fatal", e.IsFatal()),
					zap.Error(e))
				if e.IsFatal() {
					run = false
					return e
				}
			case kafka.AssignedPartitions:
				c.consumer.Assign(e.Partitions)
			case kafka.RevokedPartitions:
				c.consumer.Unassign()
			default:
				// Ignore other events (EOF markers, stats).
			}
		}
	}
	c.logger.Info("Kafka consumer loop finished", zap.String("group", groupID))
	return nil
}

// Close closes the Kafka consumer.
func (c *confluentKafkaConsumer) Close() {
	if c.consumer == nil {
		return
	}
	if err := c.consumer.Close(); err != nil {
		c.logger.Error("error closing Kafka consumer", zap.String("group", c.groupID), zap.Error(err))
	}
	c.consumer = nil
}
