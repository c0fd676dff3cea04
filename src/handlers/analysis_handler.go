package handlers

import (
	"errors"
	"net/http"

	"github.com/username/tradelens/src/logger"
	"github.com/username/tradelens/src/services"
	"github.com/username/tradelens/src/utils"
)

type analysisResponse struct {
	SessionID string `json:"sessionId"`
	Result    string `json:"result"`
}

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: service}
}

func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	sessionID := r.PathValue("sessionID")

	text, err := h.analysisService.AnalyzeSession(r.Context(), sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			utils.SendJSONError(w, "Analysis session not found or expired", http.StatusNotFound)
		case errors.Is(err, services.ErrAnalysisFailed):
			utils.SendJSONError(w, "The analysis service is unavailable. Please try again later.", http.StatusBadGateway)
		default:
			logger.FromContext(r.Context()).Error("Unexpected analysis error", "sessionID", sessionID, "error", err)
			utils.SendJSONError(w, "An internal error occurred", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, analysisResponse{SessionID: sessionID, Result: text}, http.StatusOK)
}
