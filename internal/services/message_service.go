package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"teamnet-go/internal/config"
	"teamnet-go/internal/kafka"
	"teamnet-go/internal/models"
	"teamnet-go/internal/nettypes"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyMessage   = errors.New("message content cannot be empty")
	ErrMessageTooLong = fmt.Errorf("message content exceeds %d characters", models.MaxMessageLength)
	ErrBlocked        = errors.New("messaging is not available between these users")
)

// previewLength bounds the content excerpt carried in message events.
const previewLength = 80

// MessageService owns direct-message persistence, read-state tracking, and
// the derived conversation list. Conversations are never stored; they are
// grouped from the message set on every read.
type MessageService interface {
	// Send validates and persists a message, then emits a best-effort
	// message event for the notification pipeline.
	Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error)
	// ListConversations groups the user's messages by partner and returns one
	// summary per partner, most recently active first.
	ListConversations(ctx context.Context, userID uint) ([]*models.ConversationSummary, error)
	// OpenConversation marks every unread message from partner to user as
	// read, then returns the full message history ascending by creation time.
	OpenConversation(ctx context.Context, userID, partnerID uint) ([]*models.Message, error)
	// CountUnread counts unread messages addressed to the user across all
	// conversations.
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type messageService struct {
	messageRepo storage.MessageRepository
	userRepo    storage.UserRepository
	blockRepo   storage.BlockRepository
	producer    kafka.MessageProducer
	kafkaCfg    config.KafkaConfig
	logger      *zap.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(
	messageRepo storage.MessageRepository,
	userRepo storage.UserRepository,
	blockRepo storage.BlockRepository,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		blockRepo:   blockRepo,
		producer:    producer,
		kafkaCfg:    kafkaCfg,
		logger:      logger,
	}
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	// The bound is in characters, not bytes.
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up receiver %d: %w", receiverID, err)
	}

	// The guard is symmetric: a block in either direction stops new sends.
	blocked, err := s.blockRepo.ExistsBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check block state: %w", err)
	}
	if blocked {
		return nil, ErrBlocked
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Read:       false,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.publishMessageEvent(ctx, message)
	return message, nil
}

func (s *messageService) ListConversations(ctx context.Context, userID uint) ([]*models.ConversationSummary, error) {
	messages, err := s.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for user %d: %w", userID, err)
	}

	// Messages arrive newest first, so the first message seen for a partner
	// is that conversation's last message.
	summaryByPartner := make(map[uint]*models.ConversationSummary)
	var partnerOrder []uint
	for _, m := range messages {
		partnerID := m.PartnerID(userID)
		summary, ok := summaryByPartner[partnerID]
		if !ok {
			summary = &models.ConversationSummary{
				PartnerID:       partnerID,
				LastMessage:     m.Content,
				LastMessageTime: m.CreatedAt,
			}
			summaryByPartner[partnerID] = summary
			partnerOrder = append(partnerOrder, partnerID)
		}
		if m.ReceiverID == userID && !m.Read {
			summary.UnreadCount++
		}
	}

	partners, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, partnerOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation partners: %w", err)
	}
	for _, p := range partners {
		if summary, ok := summaryByPartner[p.ID]; ok {
			summary.PartnerName = p.FullName
			if summary.PartnerName == "" {
				summary.PartnerName = p.Username
			}
			summary.PartnerAvatar = p.AvatarURL
			summary.PartnerOnline = p.Online
		}
	}

	summaries := make([]*models.ConversationSummary, 0, len(partnerOrder))
	for _, partnerID := range partnerOrder {
		summaries = append(summaries, summaryByPartner[partnerID])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastMessageTime.After(summaries[j].LastMessageTime)
	})
	return summaries, nil
}

func (s *messageService) OpenConversation(ctx context.Context, userID, partnerID uint) ([]*models.Message, error) {
	// Mark-then-fetch; a message arriving between the two steps shows up
	// unread on the next open, which is acceptable.
	if _, err := s.messageRepo.MarkConversationRead(ctx, userID, partnerID); err != nil {
		return nil, fmt.Errorf("failed to mark conversation read: %w", err)
	}
	messages, err := s.messageRepo.ListBetweenUsers(ctx, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation with user %d: %w", partnerID, err)
	}
	return messages, nil
}

func (s *messageService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

// publishMessageEvent emits a message event for the notification pipeline.
// Best-effort: the stored message stands even if the broker is down.
func (s *messageService) publishMessageEvent(ctx context.Context, message *models.Message) {
	if s.producer == nil {
		return
	}
	event := nettypes.MessageEvent{
		MessageID:  message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Preview:    truncateRunes(message.Content, previewLength),
		Timestamp:  time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to marshal message event", zap.Error(err))
		return
	}
	key := []byte(fmt.Sprintf("%d", message.ReceiverID))
	if err := s.producer.SendMessage(ctx, s.kafkaCfg.MessageEventsTopic, key, payload); err != nil {
		s.logger.Warn("failed to publish message event",
			zap.Uint("messageID", message.ID),
			zap.Error(err))
	}
}

// truncateRunes shortens s to at most n characters, appending an ellipsis
// when anything was cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
