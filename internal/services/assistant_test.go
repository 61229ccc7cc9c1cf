package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quizbot-backend/internal/quiz"
)

type fakeRetriever struct {
	passages []string
	err      error
	gotQuery string
	gotTopK  int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	f.gotQuery = query
	f.gotTopK = topK
	return f.passages, f.err
}

type fakeCompleter struct {
	response  string
	err       error
	gotSystem string
	gotUser   string
	gotTokens int
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error) {
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	f.gotTokens = maxTokens
	return f.response, f.err
}

func newTestAssistant(r Retriever, c Completer) *Assistant {
	return NewAssistant(r, c, quiz.NewSession(), 3, 8000)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		query  string
		intent Intent
		count  int
	}{
		{"give me a quiz with 3 questions", IntentQuiz, 3},
		{"QUIZ me please", IntentQuiz, 5},
		{"start a quiz", IntentQuiz, 5},
		{"I want 7 quiz questions about chapter two", IntentQuiz, 7},
		{"can you summarize this", IntentSummarize, 0},
		{"please summarise the document", IntentSummarize, 0},
		{"what is the capital", IntentAnswer, 0},
		{"", IntentAnswer, 0},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			action := classify(tc.query)
			if action.Intent != tc.intent {
				t.Errorf("query %q: expected intent %v, got %v", tc.query, tc.intent, action.Intent)
			}
			if action.QuestionCount != tc.count {
				t.Errorf("query %q: expected count %d, got %d", tc.query, tc.count, action.QuestionCount)
			}
		})
	}
}

func TestParseQuestionCount(t *testing.T) {
	tests := []struct {
		query    string
		expected int
	}{
		{"quiz me with 3 questions", 3},
		{"give me a 10 question quiz", 10},
		{"quiz", 5},
		{"quiz me", 5},
		{"quiz with many questions", 5},
		{"quiz with 0 questions", 5},
		{"quiz with -4 questions", 5},
		{"quiz with 9999 questions", 5},
	}

	for _, tc := range tests {
		if got := parseQuestionCount(tc.query); got != tc.expected {
			t.Errorf("query %q: expected %d, got %d", tc.query, tc.expected, got)
		}
	}
}

func TestAssembleContext(t *testing.T) {
	passages := []string{"first passage", "second passage", "third passage"}

	joined := assembleContext(passages, 0)
	if joined != "first passage\n\nsecond passage\n\nthird passage" {
		t.Errorf("unexpected joined context: %q", joined)
	}

	// Budget cuts whole passages from the tail, never mid-passage.
	bounded := assembleContext(passages, 30)
	if bounded != "first passage\n\nsecond passage" {
		t.Errorf("unexpected bounded context: %q", bounded)
	}

	if got := assembleContext(nil, 100); got != "" {
		t.Errorf("expected empty context for no passages, got %q", got)
	}
}

func TestHandleQuery_Answer(t *testing.T) {
	retriever := &fakeRetriever{passages: []string{"Paris is the capital of France."}}
	completer := &fakeCompleter{response: "The capital is Paris."}
	a := newTestAssistant(retriever, completer)

	reply := a.HandleQuery(context.Background(), "what is the capital of France?")

	if reply.Reply != "The capital is Paris." {
		t.Errorf("unexpected reply: %q", reply.Reply)
	}
	if reply.QuizStarted {
		t.Error("plain question must not start a quiz")
	}
	if retriever.gotTopK != 3 {
		t.Errorf("expected top_k 3, got %d", retriever.gotTopK)
	}
	if !strings.Contains(completer.gotUser, "Paris is the capital of France.") {
		t.Errorf("prompt missing retrieved context: %q", completer.gotUser)
	}
	if completer.gotTokens != answerMaxTokens {
		t.Errorf("expected %d max tokens, got %d", answerMaxTokens, completer.gotTokens)
	}
}

func TestHandleQuery_Summarize(t *testing.T) {
	retriever := &fakeRetriever{passages: []string{"chapter text"}}
	completer := &fakeCompleter{response: "A short summary."}
	a := newTestAssistant(retriever, completer)

	reply := a.HandleQuery(context.Background(), "please summarize the document")

	if reply.Reply != "A short summary." {
		t.Errorf("unexpected reply: %q", reply.Reply)
	}
	if completer.gotSystem != summarizeSystemPrompt {
		t.Errorf("unexpected system prompt: %q", completer.gotSystem)
	}
	if !strings.Contains(completer.gotUser, "chapter text") {
		t.Errorf("summary prompt missing context: %q", completer.gotUser)
	}
}

func TestHandleQuery_StartsQuiz(t *testing.T) {
	quizText := "Question: 2+2=?\nA) 1\nB) 2\nC) 4\nD) 8\nCorrect Answer: C\nExplanation: 2+2=4"
	retriever := &fakeRetriever{passages: []string{"arithmetic notes"}}
	completer := &fakeCompleter{response: quizText}
	a := newTestAssistant(retriever, completer)

	reply := a.HandleQuery(context.Background(), "quiz me with 2 questions")

	if !reply.QuizStarted {
		t.Fatalf("expected quiz to start: %+v", reply)
	}
	if reply.Question == nil || reply.Question.CorrectLabel != "C" {
		t.Fatalf("expected first question with label C, got %+v", reply.Question)
	}
	if reply.TotalQuestions != 1 {
		t.Errorf("expected 1 parsed question, got %d", reply.TotalQuestions)
	}
	if completer.gotTokens != quizMaxTokens {
		t.Errorf("expected %d max tokens for quiz, got %d", quizMaxTokens, completer.gotTokens)
	}
	if !strings.Contains(completer.gotUser, "exactly 2 multiple-choice quiz questions") {
		t.Errorf("quiz prompt missing count: %q", completer.gotUser)
	}

	// The session now owns the quiz.
	if _, idx, ok := a.Session().Current(); !ok || idx != 0 {
		t.Errorf("session not positioned at first question: idx=%d ok=%v", idx, ok)
	}
	if a.Session().ID() != reply.QuizID {
		t.Error("reply quiz ID does not match session ID")
	}
}

func TestHandleQuery_QuizReplacesPriorQuiz(t *testing.T) {
	quizText := "Question: q\nCorrect Answer: A\nExplanation: e"
	completer := &fakeCompleter{response: quizText}
	a := newTestAssistant(&fakeRetriever{}, completer)

	first := a.HandleQuery(context.Background(), "quiz me")
	second := a.HandleQuery(context.Background(), "quiz me again")

	if first.QuizID == second.QuizID {
		t.Error("new quiz request must issue a fresh session ID")
	}

	// A submission against the first quiz is stale now.
	if r := a.Session().Submit(first.QuizID, "A"); r.Active {
		t.Errorf("stale submission accepted: %+v", r)
	}
}

func TestHandleQuery_CompletionErrorDoesNotStartQuiz(t *testing.T) {
	completer := &fakeCompleter{err: &CompletionError{Cause: errors.New("upstream down")}}
	a := newTestAssistant(&fakeRetriever{}, completer)

	before := a.Session().ID()
	reply := a.HandleQuery(context.Background(), "quiz me with 3 questions")

	if reply.QuizStarted {
		t.Fatal("quiz must not start when generation fails")
	}
	if !strings.Contains(reply.Reply, "Error") {
		t.Errorf("expected user-visible error text, got %q", reply.Reply)
	}
	if a.Session().ID() != before {
		t.Error("failed generation must not replace the session")
	}
}

func TestHandleQuery_CompletionErrorSurfacedForAnswer(t *testing.T) {
	completer := &fakeCompleter{err: &CompletionError{Cause: errors.New("quota exceeded")}}
	a := newTestAssistant(&fakeRetriever{}, completer)

	reply := a.HandleQuery(context.Background(), "what is an embedding?")
	if !strings.HasPrefix(reply.Reply, "Error:") {
		t.Errorf("expected error reply, got %q", reply.Reply)
	}
}

func TestHandleQuery_RetrievalFailureDegradesToEmptyContext(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("index unavailable")}
	completer := &fakeCompleter{response: "best effort answer"}
	a := newTestAssistant(retriever, completer)

	reply := a.HandleQuery(context.Background(), "what is chapter one about?")

	if reply.Reply != "best effort answer" {
		t.Errorf("retrieval failure must not abort the query: %q", reply.Reply)
	}
	if strings.Contains(completer.gotUser, "index unavailable") {
		t.Errorf("retriever error leaked into the prompt: %q", completer.gotUser)
	}
}

func TestHandleQuery_UnparseableQuizYieldsSentinel(t *testing.T) {
	completer := &fakeCompleter{response: "sorry, I cannot help with that"}
	a := newTestAssistant(&fakeRetriever{}, completer)

	reply := a.HandleQuery(context.Background(), "quiz me")

	if !reply.QuizStarted {
		t.Fatalf("quiz should still start with the sentinel question: %+v", reply)
	}
	if reply.Question == nil || reply.Question.CorrectLabel != "N/A" {
		t.Fatalf("expected sentinel question, got %+v", reply.Question)
	}
}
