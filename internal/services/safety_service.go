package services

import (
	"context"
	"errors"
	"fmt"

	"teamnet-go/internal/models"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrSelfBlock           = errors.New("cannot block yourself")
	ErrInvalidReportReason = errors.New("report reason is not one of the known categories")
	ErrInvalidReportTarget = errors.New("report must target exactly one user or one message")
)

// SafetyService owns block and report creation. Both operations are
// fire-and-forget: there is no retraction, and blocks are never announced
// to the blocked party.
type SafetyService interface {
	// Block records a one-directional block of blocked by blocker.
	Block(ctx context.Context, blockerID, blockedID uint, reason string) (*models.BlockRecord, error)
	// Report files a report against exactly one of a user or a message.
	Report(ctx context.Context, reporterID uint, reason models.ReportReason, description string, targetUserID, targetMessageID *uint) (*models.Report, error)
}

type safetyService struct {
	blockRepo  storage.BlockRepository
	reportRepo storage.ReportRepository
	logger     *zap.Logger
}

// NewSafetyService creates a new SafetyService.
func NewSafetyService(blockRepo storage.BlockRepository, reportRepo storage.ReportRepository, logger *zap.Logger) SafetyService {
	return &safetyService{blockRepo: blockRepo, reportRepo: reportRepo, logger: logger}
}

func (s *safetyService) Block(ctx context.Context, blockerID, blockedID uint, reason string) (*models.BlockRecord, error) {
	if blockerID == blockedID {
		return nil, ErrSelfBlock
	}
	block := &models.BlockRecord{
		BlockerID: blockerID,
		BlockedID: blockedID,
		Reason:    reason,
	}
	if err := s.blockRepo.Create(ctx, block); err != nil {
		return nil, fmt.Errorf("failed to create block record: %w", err)
	}
	s.logger.Info("user blocked", zap.Uint("blockerID", blockerID), zap.Uint("blockedID", blockedID))
	return block, nil
}

func (s *safetyService) Report(ctx context.Context, reporterID uint, reason models.ReportReason, description string, targetUserID, targetMessageID *uint) (*models.Report, error) {
	if !models.ValidReportReason(reason) {
		return nil, ErrInvalidReportReason
	}
	// Exactly one target: never both, never neither.
	if (targetUserID == nil) == (targetMessageID == nil) {
		return nil, ErrInvalidReportTarget
	}
	report := &models.Report{
		ReporterID:      reporterID,
		Reason:          reason,
		Description:     description,
		TargetUserID:    targetUserID,
		TargetMessageID: targetMessageID,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	s.logger.Info("report filed",
		zap.Uint("reporterID", reporterID),
		zap.String("reason", string(reason)))
	return report, nil
}
