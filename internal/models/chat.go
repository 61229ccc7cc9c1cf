package models

import (
	"github.com/google/uuid"

	"quizbot-backend/internal/quiz"
)

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatReply is the routed outcome of a chat query. For plain questions and
// summaries only Reply is set; for quiz requests the first question and the
// session ID are included so the client can start answering.
type ChatReply struct {
	Reply          string         `json:"reply"`
	QuizStarted    bool           `json:"quiz_started"`
	QuizID         uuid.UUID      `json:"quiz_id,omitempty"`
	Question       *quiz.Question `json:"question,omitempty"`
	QuestionIndex  int            `json:"question_index,omitempty"`
	TotalQuestions int            `json:"total_questions,omitempty"`
}

// SubmitAnswerRequest carries an answer for the current quiz question.
// QuizID is optional; when set, answers for a superseded quiz are rejected.
type SubmitAnswerRequest struct {
	Answer string    `json:"answer"`
	QuizID uuid.UUID `json:"quiz_id,omitempty"`
}

// AdvanceRequest asks for the next quiz question.
type AdvanceRequest struct {
	QuizID uuid.UUID `json:"quiz_id,omitempty"`
}
