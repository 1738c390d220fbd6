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

// RoleHandler handles role request endpoints. Approval itself goes through
// the admin CLI, not the API.
type RoleHandler struct {
	roleService services.RoleService
	logger      *zap.Logger
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roleService services.RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{roleService: roleService, logger: logger}
}

// RoleRequestPayload is the expected JSON body for requesting a role.
type RoleRequestPayload struct {
	Name models.RoleName `json:"name"`
}

// Request handles POST /api/v1/roles/request.
func (h *RoleHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var payload RoleRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	role, err := h.roleService.Request(r.Context(), userID, payload.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRoleName):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrRoleAlreadyExists):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to create role request", zap.Uint("userID", userID), zap.Error(err))
			writeJSONError(w, "failed to request role", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, role)
}
