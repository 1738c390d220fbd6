package services

import (
	"context"
	"errors"
	"fmt"

	"teamnet-go/internal/models"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("notification belongs to another user")
)

// defaultNotificationLimit bounds how many notifications a list call returns.
const defaultNotificationLimit = 20

// NotificationService creates notification records as a side effect of
// connection and messaging events and exposes read/unread aggregation.
type NotificationService interface {
	// Notify creates a notification for the recipient. link is an optional
	// deep link into the UI.
	Notify(ctx context.Context, recipientID uint, notificationType models.NotificationType, title, body, link string) (*models.Notification, error)
	// ListForUser returns the recipient's most recent notifications plus the
	// total unread count. limit values outside (0, defaultNotificationLimit]
	// are clamped to the default.
	ListForUser(ctx context.Context, recipientID uint, limit int) (*models.NotificationListView, error)
	// MarkRead flips one notification to read. Only the recipient may do so.
	MarkRead(ctx context.Context, notificationID, userID uint) error
	// MarkAllRead flips every unread notification for the user to read.
	MarkAllRead(ctx context.Context, userID uint) error
}

type notificationService struct {
	notificationRepo storage.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo storage.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, recipientID uint, notificationType models.NotificationType, title, body, link string) (*models.Notification, error) {
	notification := &models.Notification{
		RecipientID: recipientID,
		Type:        notificationType,
		Title:       title,
		Body:        body,
		Link:        link,
		Read:        false,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

func (s *notificationService) ListForUser(ctx context.Context, recipientID uint, limit int) (*models.NotificationListView, error) {
	if limit <= 0 || limit > defaultNotificationLimit {
		limit = defaultNotificationLimit
	}
	items, err := s.notificationRepo.ListForRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", recipientID, err)
	}
	unread, err := s.notificationRepo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications for user %d: %w", recipientID, err)
	}
	return &models.NotificationListView{Items: items, UnreadCount: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID uint) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to load notification %d: %w", notificationID, err)
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}
	return s.notificationRepo.MarkRead(ctx, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
