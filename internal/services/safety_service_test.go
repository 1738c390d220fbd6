package services_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"teamnet-go/internal/models"
	"teamnet-go/internal/services"
)

func uintPtr(v uint) *uint { return &v }

func TestBlockValidation(t *testing.T) {
	blockRepo := &fakeBlockRepo{}
	svc := services.NewSafetyService(blockRepo, &fakeReportRepo{}, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Block(ctx, 1, 1, ""); !errors.Is(err, services.ErrSelfBlock) {
		t.Errorf("self block error = %v, want ErrSelfBlock", err)
	}

	block, err := svc.Block(ctx, 1, 2, "spam")
	if err != nil {
		t.Fatalf("Block failed: %v", err)
	}
	if block.BlockerID != 1 || block.BlockedID != 2 {
		t.Errorf("unexpected block record %+v", block)
	}

	exists, err := blockRepo.ExistsBetween(ctx, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("block record should be visible in both directions")
	}
}

func TestReportTargetExclusivity(t *testing.T) {
	reportRepo := &fakeReportRepo{}
	svc := services.NewSafetyService(&fakeBlockRepo{}, reportRepo, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Report(ctx, 1, models.ReportReasonSpam, "", nil, nil); !errors.Is(err, services.ErrInvalidReportTarget) {
		t.Errorf("no target error = %v, want ErrInvalidReportTarget", err)
	}
	if _, err := svc.Report(ctx, 1, models.ReportReasonSpam, "", uintPtr(2), uintPtr(3)); !errors.Is(err, services.ErrInvalidReportTarget) {
		t.Errorf("both targets error = %v, want ErrInvalidReportTarget", err)
	}

	userReport, err := svc.Report(ctx, 1, models.ReportReasonHarassment, "details", uintPtr(2), nil)
	if err != nil {
		t.Fatalf("user report failed: %v", err)
	}
	if userReport.TargetUserID == nil || *userReport.TargetUserID != 2 {
		t.Errorf("unexpected user report target %+v", userReport)
	}

	messageReport, err := svc.Report(ctx, 1, models.ReportReasonSpam, "", nil, uintPtr(9))
	if err != nil {
		t.Fatalf("message report failed: %v", err)
	}
	if messageReport.TargetMessageID == nil || *messageReport.TargetMessageID != 9 {
		t.Errorf("unexpected message report target %+v", messageReport)
	}

	if len(reportRepo.reports) != 2 {
		t.Errorf("stored reports = %d, want 2", len(reportRepo.reports))
	}
}

func TestReportRejectsUnknownReason(t *testing.T) {
	svc := services.NewSafetyService(&fakeBlockRepo{}, &fakeReportRepo{}, zap.NewNop())

	_, err := svc.Report(context.Background(), 1, models.ReportReason("rude"), "", uintPtr(2), nil)
	if !errors.Is(err, services.ErrInvalidReportReason) {
		t.Errorf("unknown reason error = %v, want ErrInvalidReportReason", err)
	}
}
