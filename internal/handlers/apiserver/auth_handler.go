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

// AuthHandler handles registration, login and logout requests.
type AuthHandler struct {
	authService services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// LoginRequest is the expected JSON body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ErrorResponse is the generic error body for every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSONResponse(w, status, ErrorResponse{Error: message})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Username == "" || req.Password == "" {
		writeJSONError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
			writeJSONError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, services.ErrInvalidRoleName):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("registration failed", zap.String("username", req.Username), zap.Error(err))
			writeJSONError(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Username == "" || req.Password == "" {
		writeJSONError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeJSONError(w, "invalid username or password", http.StatusUnauthorized)
		} else {
			h.logger.Error("login failed", zap.String("username", req.Username), zap.Error(err))
			writeJSONError(w, "login failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout handles POST /api/v1/auth/logout by revoking the current token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if err := h.authService.Logout(r.Context(), claims); err != nil {
		h.logger.Error("logout failed", zap.Uint("userID", claims.UserID), zap.Error(err))
		writeJSONError(w, "logout failed", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
