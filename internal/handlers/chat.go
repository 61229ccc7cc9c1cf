package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"quizbot-backend/internal/models"
	"quizbot-backend/internal/services"
)

type ChatHandler struct {
	assistant *services.Assistant
}

func NewChatHandler(assistant *services.Assistant) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Query routes a chat message: quiz request, summary request, or grounded
// question. The assistant never fails; degraded outcomes arrive as reply text.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Query is required", r))
		return
	}

	reply := h.assistant.HandleQuery(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, reply)
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
