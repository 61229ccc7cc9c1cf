package quiz

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Session tracks progression through the single active quiz. Exactly one quiz
// is live at a time: Reset replaces the question list wholesale and issues a
// fresh session ID, so submissions racing a reset are rejected as stale
// instead of landing on the new quiz.
type Session struct {
	mu        sync.Mutex
	id        uuid.UUID
	questions []Question
	position  int
	submitted bool
	finished  bool
	correct   int
}

// SubmitResult is the outcome of evaluating an answer.
type SubmitResult struct {
	Active   bool   `json:"active"`
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// AdvanceResult is the outcome of moving to the next question.
type AdvanceResult struct {
	Question *Question `json:"question,omitempty"`
	Index    int       `json:"index"`
	Finished bool      `json:"finished"`
	Feedback string    `json:"feedback,omitempty"`
}

func NewSession() *Session {
	return &Session{}
}

// Reset replaces the session with a new quiz and returns its session ID.
func (s *Session) Reset(questions []Question) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = uuid.New()
	s.questions = questions
	s.position = 0
	s.submitted = false
	s.finished = len(questions) == 0
	s.correct = 0
	return s.id
}

// ID returns the session ID of the active quiz, or uuid.Nil if none started.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Current returns the question awaiting interaction and its index. ok is
// false when no quiz is active or the quiz is finished.
func (s *Session) Current() (Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.position >= len(s.questions) {
		return Question{}, 0, false
	}
	return s.questions[s.position], s.position, true
}

// Total returns the number of questions in the active quiz.
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// Submit evaluates an answer against the current question. Only the first
// character of the answer counts, case-insensitively, so "b) some option"
// and "B" are the same choice. sessionID guards against submissions meant
// for a superseded quiz; uuid.Nil skips the check.
func (s *Session) Submit(sessionID uuid.UUID, answer string) SubmitResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != uuid.Nil && sessionID != s.id {
		return SubmitResult{Feedback: "No active question."}
	}
	if s.finished || s.submitted || s.position >= len(s.questions) {
		return SubmitResult{Feedback: "No active question."}
	}

	q := s.questions[s.position]
	s.submitted = true

	selected := normalizeLabel(answer)
	correct := selected != "" && selected == normalizeLabel(q.CorrectLabel)
	if correct {
		s.correct++
		return SubmitResult{Active: true, Correct: true, Feedback: "✅ Correct!"}
	}

	return SubmitResult{
		Active: true,
		Feedback: fmt.Sprintf("❌ Incorrect. The correct answer is: %s\n\n💡 Explanation: %s",
			q.CorrectLabel, q.Explanation),
	}
}

// Advance moves to the next question once the current one has been answered.
// On the last question it finishes the quiz and reports the score.
func (s *Session) Advance(sessionID uuid.UUID) AdvanceResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != uuid.Nil && sessionID != s.id {
		return AdvanceResult{Feedback: "No active quiz."}
	}
	if s.finished || len(s.questions) == 0 {
		return AdvanceResult{Finished: true, Feedback: "Quiz finished!"}
	}
	if !s.submitted {
		return AdvanceResult{Index: s.position, Feedback: "Cannot advance yet. Submit an answer first."}
	}

	if s.position >= len(s.questions)-1 {
		s.finished = true
		return AdvanceResult{
			Finished: true,
			Index:    s.position,
			Feedback: fmt.Sprintf("Quiz completed! You scored %d/%d.", s.correct, len(s.questions)),
		}
	}

	s.position++
	s.submitted = false
	next := s.questions[s.position]
	return AdvanceResult{Question: &next, Index: s.position}
}

func normalizeLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(trimmed[:1])
}
