package apiserver

import (
	"net/http"
	"strings"

	"teamnet-go/internal/middleware"
	"teamnet-go/internal/services"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
)

// SuggestionHandler handles connection suggestion requests.
type SuggestionHandler struct {
	suggestionService services.SuggestionService
	logger            *zap.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(suggestionService services.SuggestionService, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService, logger: logger}
}

// List handles GET /api/v1/suggestions?dismissed=2,7. The dismissed set is
// client-side session state, so it travels with the request.
func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var dismissed []uint
	if raw := r.URL.Query().Get("dismissed"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := storage.StrToUint(strings.TrimSpace(part))
			if err != nil {
				writeJSONError(w, "dismissed must be a comma-separated list of user ids", http.StatusBadRequest)
				return
			}
			dismissed = append(dismissed, id)
		}
	}

	view, err := h.suggestionService.Suggest(r.Context(), viewerID, dismissed)
	if err != nil {
		h.logger.Error("failed to compute suggestions", zap.Uint("viewerID", viewerID), zap.Error(err))
		writeJSONError(w, "failed to load suggestions", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}
