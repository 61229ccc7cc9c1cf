package handlers

import (
	"encoding/json"
	"net/http"

	"quizbot-backend/internal/models"
	"quizbot-backend/internal/quiz"
)

type QuizHandler struct {
	session *quiz.Session
}

func NewQuizHandler(session *quiz.Session) *QuizHandler {
	return &QuizHandler{session: session}
}

// Current returns the question awaiting an answer, if any.
func (h *QuizHandler) Current(w http.ResponseWriter, r *http.Request) {
	q, idx, ok := h.session.Current()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"active":  false,
			"message": "No active quiz. Ask the chat for one, e.g. \"quiz me with 5 questions\".",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active":          true,
		"quiz_id":         h.session.ID(),
		"question":        q,
		"question_index":  idx,
		"total_questions": h.session.Total(),
	})
}

// SubmitAnswer evaluates the supplied answer against the current question.
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result := h.session.Submit(req.QuizID, req.Answer)
	writeJSON(w, http.StatusOK, result)
}

// Advance moves to the next question, or finishes the quiz.
func (h *QuizHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req models.AdvanceRequest
	// An empty body is fine; the current quiz is assumed.
	json.NewDecoder(r.Body).Decode(&req)

	result := h.session.Advance(req.QuizID)
	writeJSON(w, http.StatusOK, result)
}
