package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"teamnet-go/internal/config"
	"teamnet-go/internal/kafka"
	"teamnet-go/internal/models"
	"teamnet-go/internal/nettypes"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSelfConnection       = errors.New("cannot send a connection request to yourself")
	ErrConnectionExists     = errors.New("an active connection already exists with this user")
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrNotReceiver          = errors.New("only the receiver can respond to a connection request")
	ErrConnectionNotPending = errors.New("connection request is no longer pending")
	ErrNotParticipant       = errors.New("user is not a participant in this connection")
)

// ConnectionService manages the connection request lifecycle between members.
type ConnectionService interface {
	// SendRequest creates a pending connection from requester to receiver.
	SendRequest(ctx context.Context, requesterID, receiverID uint) (*models.Connection, error)
	// Respond accepts or rejects a pending request. Only the receiver may
	// respond, and only while the request is still pending.
	Respond(ctx context.Context, connectionID, responderID uint, accept bool) (*models.Connection, error)
	// Remove hard-deletes a connection. Used both to cancel a pending request
	// and to sever an accepted connection; either participant may call it.
	Remove(ctx context.Context, connectionID, userID uint) error
	// ListForUser returns the user's connections partitioned by status and
	// direction, de-duplicated by unordered pair.
	ListForUser(ctx context.Context, userID uint) (*models.ConnectionListView, error)
}

type connectionService struct {
	connectionRepo storage.ConnectionRepository
	userRepo       storage.UserRepository
	producer       kafka.MessageProducer
	kafkaCfg       config.KafkaConfig
	logger         *zap.Logger
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(
	connectionRepo storage.ConnectionRepository,
	userRepo storage.UserRepository,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
	logger *zap.Logger,
) ConnectionService {
	return &connectionService{
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
		producer:       producer,
		kafkaCfg:       kafkaCfg,
		logger:         logger,
	}
}

func (s *connectionService) SendRequest(ctx context.Context, requesterID, receiverID uint) (*models.Connection, error) {
	if requesterID == receiverID {
		return nil, ErrSelfConnection
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up receiver %d: %w", receiverID, err)
	}

	existing, err := s.connectionRepo.FindActiveBetween(ctx, requesterID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing connection: %w", err)
	}
	if existing != nil {
		return nil, ErrConnectionExists
	}

	connection := &models.Connection{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.ConnectionStatusPending,
	}
	if err := s.connectionRepo.Create(ctx, connection); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	s.publishConnectionEvent(ctx, nettypes.ConnectionRequestEvent, connection)
	return connection, nil
}

func (s *connectionService) Respond(ctx context.Context, connectionID, responderID uint, accept bool) (*models.Connection, error) {
	connection, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, fmt.Errorf("failed to load connection %d: %w", connectionID, err)
	}

	if connection.ReceiverID != responderID {
		return nil, ErrNotReceiver
	}
	if connection.Status != models.ConnectionStatusPending {
		return nil, ErrConnectionNotPending
	}

	newStatus := models.ConnectionStatusRejected
	if accept {
		newStatus = models.ConnectionStatusAccepted
	}
	if err := s.connectionRepo.UpdateStatus(ctx, connectionID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update connection %d status: %w", connectionID, err)
	}
	connection.Status = newStatus

	// Rejections are silent; only the requester learns about an accept.
	if accept {
		s.publishConnectionEvent(ctx, nettypes.ConnectionAcceptedEvent, connection)
	}
	return connection, nil
}

func (s *connectionService) Remove(ctx context.Context, connectionID, userID uint) error {
	connection, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConnectionNotFound
		}
		return fmt.Errorf("failed to load connection %d: %w", connectionID, err)
	}
	if !connection.Involves(userID) {
		return ErrNotParticipant
	}
	if err := s.connectionRepo.Delete(ctx, connectionID); err != nil {
		return fmt.Errorf("failed to delete connection %d: %w", connectionID, err)
	}
	return nil
}

func (s *connectionService) ListForUser(ctx context.Context, userID uint) (*models.ConnectionListView, error) {
	connections, err := s.connectionRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections for user %d: %w", userID, err)
	}

	// Duplicate requests between the same pair are possible at the data
	// layer. When rendering, an accepted record wins over any other status
	// and the newest record wins within a status. Records arrive newest
	// first, so the first index seen per pair is the newest.
	bestByPair := make(map[[2]uint]int, len(connections))
	for i, c := range connections {
		key := c.PairKey()
		best, seen := bestByPair[key]
		if !seen {
			bestByPair[key] = i
			continue
		}
		if connections[best].Status != models.ConnectionStatusAccepted && c.Status == models.ConnectionStatusAccepted {
			bestByPair[key] = i
		}
	}

	var kept []models.Connection
	partnerIDs := make([]uint, 0, len(bestByPair))
	for i, c := range connections {
		if bestByPair[c.PairKey()] != i {
			continue
		}
		kept = append(kept, c)
		partnerIDs = append(partnerIDs, c.PartnerID(userID))
	}

	partners, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner profiles: %w", err)
	}
	partnerByID := make(map[uint]*models.UserBasicInfo, len(partners))
	for _, p := range partners {
		partnerByID[p.ID] = p
	}

	view := &models.ConnectionListView{
		Accepted:        []*models.ConnectionWithPartner{},
		IncomingPending: []*models.ConnectionWithPartner{},
		OutgoingPending: []*models.ConnectionWithPartner{},
	}
	for _, c := range kept {
		entry := &models.ConnectionWithPartner{
			Connection: c,
			Partner:    partnerByID[c.PartnerID(userID)],
		}
		switch {
		case c.Status == models.ConnectionStatusAccepted:
			view.Accepted = append(view.Accepted, entry)
		case c.IsIncomingFor(userID):
			view.IncomingPending = append(view.IncomingPending, entry)
		case c.Status == models.ConnectionStatusPending:
			view.OutgoingPending = append(view.OutgoingPending, entry)
		}
		// Rejected connections are not shown to either side.
	}
	return view, nil
}

// publishConnectionEvent emits a connection event for the notification
// pipeline. Best-effort: a broker failure never rolls back the write that
// triggered it.
func (s *connectionService) publishConnectionEvent(ctx context.Context, eventType nettypes.EventType, connection *models.Connection) {
	if s.producer == nil {
		return
	}
	event := nettypes.ConnectionEvent{
		Type:         eventType,
		ConnectionID: connection.ID,
		RequesterID:  connection.RequesterID,
		ReceiverID:   connection.ReceiverID,
		Timestamp:    time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to marshal connection event", zap.Error(err))
		return
	}
	key := []byte(fmt.Sprintf("%d", connection.ID))
	if err := s.producer.SendMessage(ctx, s.kafkaCfg.ConnectionEventsTopic, key, payload); err != nil {
		s.logger.Warn("failed to publish connection event",
			zap.String("type", string(eventType)),
			zap.Uint("connectionID", connection.ID),
			zap.Error(err))
	}
}
