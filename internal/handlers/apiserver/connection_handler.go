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

// ConnectionHandler handles connection lifecycle requests.
type ConnectionHandler struct {
	connectionService services.ConnectionService
	logger            *zap.Logger
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(connectionService services.ConnectionService, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService, logger: logger}
}

// SendRequestPayload is the expected JSON body for sending a request.
type SendRequestPayload struct {
	ReceiverID uint `json:"receiverId"`
}

// Send handles POST /api/v1/connections.
func (h *ConnectionHandler) Send(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var payload SendRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if payload.ReceiverID == 0 {
		writeJSONError(w, "receiverId is required", http.StatusBadRequest)
		return
	}

	connection, err := h.connectionService.SendRequest(r.Context(), requesterID, payload.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfConnection):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrConnectionExists):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to send connection request",
				zap.Uint("requesterID", requesterID),
				zap.Uint("receiverID", payload.ReceiverID),
				zap.Error(err))
			writeJSONError(w, "failed to send connection request", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, connection)
}

// Accept handles POST /api/v1/connections/{id}/accept.
func (h *ConnectionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, true)
}

// Reject handles POST /api/v1/connections/{id}/reject.
func (h *ConnectionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, false)
}

func (h *ConnectionHandler) respond(w http.ResponseWriter, r *http.Request, accept bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	connectionID, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid connection id", http.StatusBadRequest)
		return
	}

	connection, err := h.connectionService.Respond(r.Context(), connectionID, userID, accept)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConnectionNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotReceiver):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrConnectionNotPending):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to respond to connection request",
				zap.Uint("connectionID", connectionID), zap.Error(err))
			writeJSONError(w, "failed to respond to connection request", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, connection)
}

// Remove handles DELETE /api/v1/connections/{id}. Cancels a pending request
// or severs an accepted connection.
func (h *ConnectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	connectionID, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid connection id", http.StatusBadRequest)
		return
	}

	if err := h.connectionService.Remove(r.Context(), connectionID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrConnectionNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotParticipant):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			h.logger.Error("failed to remove connection",
				zap.Uint("connectionID", connectionID), zap.Error(err))
			writeJSONError(w, "failed to remove connection", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/v1/connections.
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	view, err := h.connectionService.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list connections", zap.Uint("userID", userID), zap.Error(err))
		writeJSONError(w, "failed to list connections", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}
