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

// UserHandler handles member profile and directory search requests.
type UserHandler struct {
	userService services.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// GetMe handles GET /api/v1/users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	h.writeProfile(w, r, userID)
}

// GetByID handles GET /users/{userID}. Public profile view.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userID"])
	if err != nil {
		writeJSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	h.writeProfile(w, r, userID)
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, r *http.Request, userID uint) {
	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, "user not found", http.StatusNotFound)
		} else {
			h.logger.Error("failed to load profile", zap.Uint("userID", userID), zap.Error(err))
			writeJSONError(w, "failed to load profile", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateMe handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.userService.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, "user not found", http.StatusNotFound)
		} else {
			h.logger.Error("failed to update profile", zap.Uint("userID", userID), zap.Error(err))
			writeJSONError(w, "failed to update profile", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// Search handles GET /api/v1/users/search?q=.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	users, err := h.userService.Search(r.Context(), query, userID)
	if err != nil {
		h.logger.Error("user search failed", zap.String("query", query), zap.Error(err))
		writeJSONError(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}
