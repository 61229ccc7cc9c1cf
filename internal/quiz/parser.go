package quiz

import (
	"regexp"
	"strings"
)

// Question is a single parsed multiple-choice quiz item.
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectLabel string   `json:"correct_label"`
	Explanation  string   `json:"explanation"`
}

const (
	correctMarker = "Correct Answer:"
	explainMarker = "Explanation:"
)

// DefaultOptionLabels is the fixed label set for generated questions. The
// option lines themselves stay embedded in the prompt text.
var DefaultOptionLabels = []string{"A", "B", "C", "D"}

var blockDelimiter = regexp.MustCompile(`\n[ \t]*\n`)

// Parse extracts questions from raw generated text. Blocks are separated by
// blank lines; a block is accepted only if it contains both the correct-answer
// and the explanation marker. Malformed blocks are dropped without failing the
// batch. The result is truncated to maxQuestions. If nothing parses, a single
// sentinel question is returned so the caller always has something to show.
func Parse(raw string, maxQuestions int) []Question {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var questions []Question
	for _, block := range blockDelimiter.Split(raw, -1) {
		q, ok := parseBlock(block)
		if !ok {
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return []Question{sentinelQuestion()}
	}

	if maxQuestions > 0 && len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	return questions
}

func parseBlock(block string) (Question, bool) {
	if !strings.Contains(block, correctMarker) || !strings.Contains(block, explainMarker) {
		return Question{}, false
	}

	prompt := block[:strings.Index(block, correctMarker)]

	// The label sits between the last correct-answer marker and the
	// explanation marker that follows it.
	label := block[strings.LastIndex(block, correctMarker)+len(correctMarker):]
	if i := strings.Index(label, explainMarker); i >= 0 {
		label = label[:i]
	}

	explanation := block[strings.LastIndex(block, explainMarker)+len(explainMarker):]

	return Question{
		Prompt:       strings.TrimSpace(prompt),
		Options:      DefaultOptionLabels,
		CorrectLabel: strings.ToUpper(strings.TrimSpace(label)),
		Explanation:  strings.TrimSpace(explanation),
	}, true
}

func sentinelQuestion() Question {
	return Question{
		Prompt:       "Error: Failed to generate quiz.",
		Options:      []string{},
		CorrectLabel: "N/A",
		Explanation:  "No explanation available.",
	}
}
