package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"teamnet-go/internal/middleware"
	"teamnet-go/internal/services"
	"teamnet-go/internal/storage"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MessageHandler handles direct messaging requests.
type MessageHandler struct {
	messageService services.MessageService
	logger         *zap.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService services.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

// SendMessagePayload is the expected JSON body for sending a message.
type SendMessagePayload struct {
	ReceiverID uint   `json:"receiverId"`
	Content    string `json:"content"`
}

// Send handles POST /api/v1/messages.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var payload SendMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if payload.ReceiverID == 0 {
		writeJSONError(w, "receiverId is required", http.StatusBadRequest)
		return
	}

	message, err := h.messageService.Send(r.Context(), senderID, payload.ReceiverID, payload.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrMessageTooLong):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrBlocked):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			h.logger.Error("failed to send message",
				zap.Uint("senderID", senderID),
				zap.Uint("receiverID", payload.ReceiverID),
				zap.Error(err))
			writeJSONError(w, "failed to send message", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, message)
}

// ListConversations handles GET /api/v1/conversations.
func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	summaries, err := h.messageService.ListConversations(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Uint("userID", userID), zap.Error(err))
		writeJSONError(w, "failed to list conversations", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, summaries)
}

// OpenConversation handles GET /api/v1/conversations/{partnerID}/messages.
// Opening the conversation marks incoming messages as read.
func (h *MessageHandler) OpenConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	partnerID, err := storage.StrToUint(mux.Vars(r)["partnerID"])
	if err != nil {
		writeJSONError(w, "invalid partner id", http.StatusBadRequest)
		return
	}

	messages, err := h.messageService.OpenConversation(r.Context(), userID, partnerID)
	if err != nil {
		h.logger.Error("failed to open conversation",
			zap.Uint("userID", userID),
			zap.Uint("partnerID", partnerID),
			zap.Error(err))
		writeJSONError(w, "failed to open conversation", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, messages)
}
