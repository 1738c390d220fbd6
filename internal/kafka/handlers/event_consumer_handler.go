package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"teamnet-go/internal/config"
	appkafka "teamnet-go/internal/kafka"
	"teamnet-go/internal/models"
	"teamnet-go/internal/nettypes"
	"teamnet-go/internal/services"
	"teamnet-go/internal/storage"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// EventConsumerHandler consumes connection and message events, materializes
// them as notification rows, and republishes a realtime envelope for any
// presence server holding the recipient's socket.
type EventConsumerHandler struct {
	notificationService services.NotificationService
	userRepo            storage.UserRepository
	producer            appkafka.MessageProducer
	kafkaCfg            config.KafkaConfig
	logger              *zap.Logger
}

// NewEventConsumerHandler creates a new EventConsumerHandler.
func NewEventConsumerHandler(
	notificationService services.NotificationService,
	userRepo storage.UserRepository,
	producer appkafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
	logger *zap.Logger,
) *EventConsumerHandler {
	return &EventConsumerHandler{
		notificationService: notificationService,
		userRepo:            userRepo,
		producer:            producer,
		kafkaCfg:            kafkaCfg,
		logger:              logger,
	}
}

// HandleMessage dispatches a consumed record by topic. Returning an error
// skips the offset commit, so the record is redelivered; notification
// creation is the only non-idempotent step and a rare duplicate row is
// acceptable.
func (h *EventConsumerHandler) HandleMessage(ctx context.Context, msg *kafka.Message) error {
	if msg.TopicPartition.Topic == nil {
		return fmt.Errorf("consumed record has no topic")
	}
	switch *msg.TopicPartition.Topic {
	case h.kafkaCfg.ConnectionEventsTopic:
		return h.handleConnectionEvent(ctx, msg.Value)
	case h.kafkaCfg.MessageEventsTopic:
		return h.handleMessageEvent(ctx, msg.Value)
	default:
		h.logger.Warn("record from unexpected topic", zap.String("topic", *msg.TopicPartition.Topic))
		return nil // commit and move on
	}
}

func (h *EventConsumerHandler) handleConnectionEvent(ctx context.Context, payload []byte) error {
	var event nettypes.ConnectionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("failed to unmarshal connection event, skipping", zap.Error(err))
		return nil // poison record; do not retry forever
	}

	var (
		recipientID      uint
		actorID          uint
		notificationType models.NotificationType
		title            string
		bodyFormat       string
	)
	switch event.Type {
	case nettypes.ConnectionRequestEvent:
		recipientID = event.ReceiverID
		actorID = event.RequesterID
		notificationType = models.NotificationConnectionRequest
		title = "New connection request"
		bodyFormat = "%s wants to connect with you"
	case nettypes.ConnectionAcceptedEvent:
		recipientID = event.RequesterID
		actorID = event.ReceiverID
		notificationType = models.NotificationConnectionAccepted
		title = "Connection accepted"
		bodyFormat = "%s accepted your connection request"
	default:
		h.logger.Warn("connection event with unknown type, skipping", zap.String("type", string(event.Type)))
		return nil
	}

	body := fmt.Sprintf(bodyFormat, h.displayName(ctx, actorID))
	notification, err := h.notificationService.Notify(ctx, recipientID, notificationType, title, body, "/network")
	if err != nil {
		return fmt.Errorf("failed to create connection notification: %w", err)
	}

	h.publishRealtime(ctx, nettypes.NotificationEvent, recipientID, notification)
	return nil
}

func (h *EventConsumerHandler) handleMessageEvent(ctx context.Context, payload []byte) error {
	var event nettypes.MessageEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("failed to unmarshal message event, skipping", zap.Error(err))
		return nil
	}

	body := event.Preview
	if sender := h.displayName(ctx, event.SenderID); sender != "" {
		body = fmt.Sprintf("%s: %s", sender, event.Preview)
	}
	link := fmt.Sprintf("/messages/%d", event.SenderID)
	notification, err := h.notificationService.Notify(ctx, event.ReceiverID, models.NotificationMessageReceived, "New message", body, link)
	if err != nil {
		return fmt.Errorf("failed to create message notification: %w", err)
	}

	h.publishRealtime(ctx, nettypes.NotificationEvent, event.ReceiverID, notification)
	return nil
}

// displayName resolves a user's display name, falling back to the username
// and then to empty when the user cannot be loaded.
func (h *EventConsumerHandler) displayName(ctx context.Context, userID uint) string {
	info, err := h.userRepo.GetBasicInfoByID(ctx, userID)
	if err != nil {
		h.logger.Warn("failed to load user for notification body", zap.Uint("userID", userID), zap.Error(err))
		return ""
	}
	if info.FullName != "" {
		return info.FullName
	}
	return info.Username
}

// publishRealtime pushes the notification to the realtime outgoing topic.
// Best-effort: the notification row already exists and will be seen on the
// next list fetch even if no socket delivery happens.
func (h *EventConsumerHandler) publishRealtime(ctx context.Context, eventType nettypes.EventType, recipientID uint, notification *models.Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		h.logger.Error("failed to marshal notification payload", zap.Error(err))
		return
	}
	envelope := nettypes.RealtimeEvent{
		Type:        eventType,
		RecipientID: recipientID,
		Payload:     payload,
		Timestamp:   time.Now(),
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("failed to marshal realtime envelope", zap.Error(err))
		return
	}
	key := []byte(fmt.Sprintf("%d", recipientID))
	if err := h.producer.SendMessage(ctx, h.kafkaCfg.RealtimeOutgoingTopic, key, value); err != nil {
		h.logger.Warn("failed to publish realtime event",
			zap.Uint("recipientID", recipientID),
			zap.Error(err))
	}
}
