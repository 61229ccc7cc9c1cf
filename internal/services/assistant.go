package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"quizbot-backend/internal/models"
	"quizbot-backend/internal/quiz"
)

const (
	defaultQuestionCount = 5
	maxQuestionCount     = 20

	quizMaxTokens   = 1000
	answerMaxTokens = 300
	temperature     = 0.7
)

// Intent classifies what a chat query asks for.
type Intent int

const (
	IntentAnswer Intent = iota
	IntentSummarize
	IntentQuiz
)

// RoutedAction is the decision made once per query: what to do and, for quiz
// requests, how many questions to generate.
type RoutedAction struct {
	Intent        Intent
	QuestionCount int
}

// Retriever returns the most relevant passages for a query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]string, error)
}

// Completer runs a single text completion.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error)
}

// Assistant routes chat queries to the quiz pipeline or to a single-shot
// grounded answer/summary. Failures from the retriever degrade to an empty
// context; failures from the completer become user-visible error text.
// Nothing escapes this layer as an error.
type Assistant struct {
	retriever       Retriever
	completer       Completer
	session         *quiz.Session
	topK            int
	maxContextChars int
}

func NewAssistant(retriever Retriever, completer Completer, session *quiz.Session, topK, maxContextChars int) *Assistant {
	return &Assistant{
		retriever:       retriever,
		completer:       completer,
		session:         session,
		topK:            topK,
		maxContextChars: maxContextChars,
	}
}

// Session exposes the quiz session so handlers can bind submit/advance to it.
func (a *Assistant) Session() *quiz.Session {
	return a.session
}

// classify decides the routed action from the raw query text.
func classify(query string) RoutedAction {
	lowered := strings.ToLower(query)

	if strings.Contains(lowered, "quiz") {
		return RoutedAction{Intent: IntentQuiz, QuestionCount: parseQuestionCount(query)}
	}
	if strings.Contains(lowered, "summarize") || strings.Contains(lowered, "summarise") {
		return RoutedAction{Intent: IntentSummarize}
	}
	return RoutedAction{Intent: IntentAnswer}
}

// parseQuestionCount scans the query for the first integer token. Counts
// outside 1..maxQuestionCount fall back to the default.
func parseQuestionCount(query string) int {
	for _, token := range strings.Fields(query) {
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		if n < 1 || n > maxQuestionCount {
			return defaultQuestionCount
		}
		return n
	}
	return defaultQuestionCount
}

// HandleQuery routes a query and always produces a user-facing reply.
func (a *Assistant) HandleQuery(ctx context.Context, query string) *models.ChatReply {
	action := classify(query)
	contextText := a.retrieveContext(ctx, query)

	switch action.Intent {
	case IntentQuiz:
		return a.startQuiz(ctx, contextText, action.QuestionCount)
	case IntentSummarize:
		return a.answer(ctx, summarizeSystemPrompt, summarizePrompt(contextText))
	default:
		return a.answer(ctx, answerSystemPrompt, answerPrompt(contextText, query))
	}
}

// retrieveContext assembles the grounding context, degrading to an empty
// context when retrieval fails so a chat query never dies on an index error.
func (a *Assistant) retrieveContext(ctx context.Context, query string) string {
	passages, err := a.retriever.Retrieve(ctx, query, a.topK)
	if err != nil {
		log.Printf("[WARN] Retrieval failed, continuing with empty context: %v", err)
		return ""
	}
	return assembleContext(passages, a.maxContextChars)
}

// assembleContext joins passages with blank lines, keeping the result under
// maxChars by dropping whole passages from the tail.
func assembleContext(passages []string, maxChars int) string {
	var b strings.Builder
	for _, p := range passages {
		needed := len(p)
		if b.Len() > 0 {
			needed += 2
		}
		if maxChars > 0 && b.Len()+needed > maxChars {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	return b.String()
}

func (a *Assistant) startQuiz(ctx context.Context, contextText string, count int) *models.ChatReply {
	completion, err := a.completer.Complete(ctx, quizSystemPrompt, quizPrompt(count, contextText), quizMaxTokens, temperature)
	if err != nil {
		log.Printf("[ERROR] Quiz generation failed: %v", err)
		return &models.ChatReply{Reply: "Error: failed to generate quiz. Please try again."}
	}

	questions := quiz.Parse(completion, count)
	quizID := a.session.Reset(questions)
	log.Printf("[INFO] Quiz started: %d questions (session %s)", len(questions), quizID)

	first, idx, ok := a.session.Current()
	if !ok {
		return &models.ChatReply{Reply: "Failed to generate quiz."}
	}

	return &models.ChatReply{
		Reply:          "Quiz started!",
		QuizStarted:    true,
		QuizID:         quizID,
		Question:       &first,
		QuestionIndex:  idx,
		TotalQuestions: a.session.Total(),
	}
}

func (a *Assistant) answer(ctx context.Context, systemPrompt, userPrompt string) *models.ChatReply {
	completion, err := a.completer.Complete(ctx, systemPrompt, userPrompt, answerMaxTokens, temperature)
	if err != nil {
		log.Printf("[ERROR] Completion failed: %v", err)
		return &models.ChatReply{Reply: fmt.Sprintf("Error: %v", err)}
	}
	return &models.ChatReply{Reply: completion}
}

// Prompts

const (
	quizSystemPrompt      = "You are a helpful assistant that generates multiple-choice quiz questions."
	summarizeSystemPrompt = "You are an AI assistant that summarizes documents."
	answerSystemPrompt    = "You are a helpful assistant that answers questions."
)

func quizPrompt(count int, contextText string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate exactly %d multiple-choice quiz questions based on the following context.\n\n", count)
	b.WriteString("Format each question exactly like this, with a blank line between questions:\n\n")
	b.WriteString("Question: <question>\n")
	b.WriteString("A) <option1>\n")
	b.WriteString("B) <option2>\n")
	b.WriteString("C) <option3>\n")
	b.WriteString("D) <option4>\n")
	b.WriteString("Correct Answer: <letter>\n")
	b.WriteString("Explanation: <why correct>\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextText)

	return b.String()
}

func summarizePrompt(contextText string) string {
	return "Summarize the following text:\n\n" + contextText
}

func answerPrompt(contextText, query string) string {
	var b strings.Builder

	b.WriteString("Based on the following context, answer the query.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nQuery:\n")
	b.WriteString(query)

	return b.String()
}
