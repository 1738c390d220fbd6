package apiserver

import (
	"errors"
	"net/http"
	"strconv"

	"teamnet-go/internal/middleware"
	"teamnet-go/internal/services"
	"teamnet-go/internal/storage"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NotificationHandler handles notification listing and read-marking requests.
type NotificationHandler struct {
	notificationService services.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

// List handles GET /api/v1/notifications?limit=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	view, err := h.notificationService.ListForUser(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Uint("userID", userID), zap.Error(err))
		writeJSONError(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// MarkRead handles POST /api/v1/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	notificationID, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotificationNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotRecipient):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			h.logger.Error("failed to mark notification read",
				zap.Uint("notificationID", notificationID), zap.Error(err))
			writeJSONError(w, "failed to mark notification read", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), userID); err != nil {
		h.logger.Error("failed to mark all notifications read", zap.Uint("userID", userID), zap.Error(err))
		writeJSONError(w, "failed to mark notifications read", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
