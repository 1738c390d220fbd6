package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"teamnet-go/internal/middleware"
	"teamnet-go/internal/models"
	"teamnet-go/internal/services"

	"go.uber.org/zap"
)

// SafetyHandler handles block and report requests.
type SafetyHandler struct {
	safetyService services.SafetyService
	logger        *zap.Logger
}

// NewSafetyHandler creates a new SafetyHandler.
func NewSafetyHandler(safetyService services.SafetyService, logger *zap.Logger) *SafetyHandler {
	return &SafetyHandler{safetyService: safetyService, logger: logger}
}

// BlockPayload is the expected JSON body for blocking a user.
type BlockPayload struct {
	BlockedID uint   `json:"blockedId"`
	Reason    string `json:"reason,omitempty"`
}

// Block handles POST /api/v1/blocks.
func (h *SafetyHandler) Block(w http.ResponseWriter, r *http.Request) {
	blockerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var payload BlockPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if payload.BlockedID == 0 {
		writeJSONError(w, "blockedId is required", http.StatusBadRequest)
		return
	}

	block, err := h.safetyService.Block(r.Context(), blockerID, payload.BlockedID, payload.Reason)
	if err != nil {
		if errors.Is(err, services.ErrSelfBlock) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			h.logger.Error("failed to create block",
				zap.Uint("blockerID", blockerID), zap.Error(err))
			writeJSONError(w, "failed to block user", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, block)
}

// ReportPayload is the expected JSON body for filing a report.
type ReportPayload struct {
	Reason          models.ReportReason `json:"reason"`
	Description     string              `json:"description,omitempty"`
	TargetUserID    *uint               `json:"targetUserId,omitempty"`
	TargetMessageID *uint               `json:"targetMessageId,omitempty"`
}

// Report handles POST /api/v1/reports.
func (h *SafetyHandler) Report(w http.ResponseWriter, r *http.Request) {
	reporterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var payload ReportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	report, err := h.safetyService.Report(r.Context(), reporterID, payload.Reason, payload.Description, payload.TargetUserID, payload.TargetMessageID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidReportReason) || errors.Is(err, services.ErrInvalidReportTarget) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			h.logger.Error("failed to file report",
				zap.Uint("reporterID", reporterID), zap.Error(err))
			writeJSONError(w, "failed to file report", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, report)
}
