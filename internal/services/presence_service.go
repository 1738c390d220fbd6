package services

import (
	"context"
	"time"

	"teamnet-go/internal/storage"

	"go.uber.org/zap"
)

// PresenceStore abstracts the volatile presence tracker. A user counts as
// online while their heartbeat entry is alive; entries expire on their own
// when heartbeats stop.
type PresenceStore interface {
	Heartbeat(ctx context.Context, userID uint) error
	Remove(ctx context.Context, userID uint) error
	IsOnline(ctx context.Context, userID uint) (bool, error)
	OnlineUserIDs(ctx context.Context) ([]uint, error)
}

// PresenceService tracks which users are online. The store is authoritative;
// the users table keeps a denormalized online flag so profile reads do not
// need a presence lookup.
type PresenceService interface {
	// MarkOnline records the user as online at session start.
	MarkOnline(ctx context.Context, userID uint) error
	// MarkOffline removes the user's presence on explicit disconnect.
	MarkOffline(ctx context.Context, userID uint) error
	// Heartbeat extends the user's online window.
	Heartbeat(ctx context.Context, userID uint) error
	IsOnline(ctx context.Context, userID uint) (bool, error)
	OnlineUserIDs(ctx context.Context) ([]uint, error)
}

type presenceService struct {
	store    PresenceStore
	userRepo storage.UserRepository
	logger   *zap.Logger
}

// NewPresenceService creates a new PresenceService.
func NewPresenceService(store PresenceStore, userRepo storage.UserRepository, logger *zap.Logger) PresenceService {
	return &presenceService{store: store, userRepo: userRepo, logger: logger}
}

func (s *presenceService) MarkOnline(ctx context.Context, userID uint) error {
	if err := s.store.Heartbeat(ctx, userID); err != nil {
		return err
	}
	// The denormalized flag is best-effort; the store already holds the truth.
	if err := s.userRepo.UpdatePresence(ctx, userID, true, time.Now()); err != nil {
		s.logger.Warn("failed to update online flag", zap.Uint("userID", userID), zap.Error(err))
	}
	return nil
}

func (s *presenceService) MarkOffline(ctx context.Context, userID uint) error {
	if err := s.store.Remove(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePresence(ctx, userID, false, time.Now()); err != nil {
		s.logger.Warn("failed to update offline flag", zap.Uint("userID", userID), zap.Error(err))
	}
	return nil
}

func (s *presenceService) Heartbeat(ctx context.Context, userID uint) error {
	return s.store.Heartbeat(ctx, userID)
}

func (s *presenceService) IsOnline(ctx context.Context, userID uint) (bool, error) {
	return s.store.IsOnline(ctx, userID)
}

func (s *presenceService) OnlineUserIDs(ctx context.Context) ([]uint, error) {
	return s.store.OnlineUserIDs(ctx)
}
