package quiz

import (
	"strings"
	"testing"
)

const wellFormedQuiz = `Question: What is the capital of France?
A) Berlin
B) Madrid
C) Paris
D) Rome
Correct Answer: C
Explanation: Paris has been the capital of France since 987.

Question: Which planet is closest to the sun?
A) Mercury
B) Venus
C) Earth
D) Mars
Correct Answer: A
Explanation: Mercury orbits at roughly 58 million km.

Question: What is 2+2?
A) 3
B) 4
C) 5
D) 6
Correct Answer: b
Explanation: Basic arithmetic.`

func TestParse_WellFormedBlocks(t *testing.T) {
	questions := Parse(wellFormedQuiz, 5)

	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}

	if !strings.HasPrefix(questions[0].Prompt, "Question: What is the capital of France?") {
		t.Errorf("unexpected first prompt: %q", questions[0].Prompt)
	}
	if questions[0].CorrectLabel != "C" {
		t.Errorf("expected correct label C, got %q", questions[0].CorrectLabel)
	}
	if questions[0].Explanation != "Paris has been the capital of France since 987." {
		t.Errorf("unexpected explanation: %q", questions[0].Explanation)
	}

	// Source order is preserved
	if questions[1].CorrectLabel != "A" {
		t.Errorf("expected second question label A, got %q", questions[1].CorrectLabel)
	}

	// Lowercase labels are normalized to uppercase
	if questions[2].CorrectLabel != "B" {
		t.Errorf("expected uppercased label B, got %q", questions[2].CorrectLabel)
	}
}

func TestParse_OptionLabelsAlwaysFixed(t *testing.T) {
	questions := Parse(wellFormedQuiz, 5)
	for i, q := range questions {
		if len(q.Options) != 4 {
			t.Fatalf("question %d: expected 4 option labels, got %d", i, len(q.Options))
		}
		for j, want := range []string{"A", "B", "C", "D"} {
			if q.Options[j] != want {
				t.Errorf("question %d option %d: expected %q, got %q", i, j, want, q.Options[j])
			}
		}
	}
}

func TestParse_PromptExcludesMarkers(t *testing.T) {
	questions := Parse(wellFormedQuiz, 5)
	for i, q := range questions {
		if strings.Contains(q.Prompt, "Correct Answer:") || strings.Contains(q.Prompt, "Explanation:") {
			t.Errorf("question %d prompt still contains markers: %q", i, q.Prompt)
		}
	}
}

func TestParse_MalformedBlocksDropped(t *testing.T) {
	raw := `Question: missing explanation
Correct Answer: A

Question: missing answer
Explanation: nothing to pick from

Question: complete block
A) yes
B) no
Correct Answer: A
Explanation: this one survives`

	questions := Parse(raw, 10)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if !strings.HasPrefix(questions[0].Prompt, "Question: complete block") {
		t.Errorf("wrong block accepted: %q", questions[0].Prompt)
	}
}

func TestParse_TruncatesToMax(t *testing.T) {
	questions := Parse(wellFormedQuiz, 2)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	// Truncation keeps the first blocks, not a filtered subset
	if questions[0].CorrectLabel != "C" || questions[1].CorrectLabel != "A" {
		t.Errorf("truncation changed order: %q, %q", questions[0].CorrectLabel, questions[1].CorrectLabel)
	}
}

func TestParse_SentinelOnZeroAccepted(t *testing.T) {
	for _, raw := range []string{"", "no markers here at all", "Correct Answer: A"} {
		questions := Parse(raw, 5)
		if len(questions) != 1 {
			t.Fatalf("input %q: expected 1 sentinel question, got %d", raw, len(questions))
		}
		q := questions[0]
		if q.CorrectLabel != "N/A" {
			t.Errorf("input %q: expected N/A label, got %q", raw, q.CorrectLabel)
		}
		if len(q.Options) != 0 {
			t.Errorf("input %q: expected no option labels, got %v", raw, q.Options)
		}
		if q.Explanation != "No explanation available." {
			t.Errorf("input %q: unexpected explanation %q", raw, q.Explanation)
		}
	}
}

func TestParse_CRLFInput(t *testing.T) {
	raw := strings.ReplaceAll(wellFormedQuiz, "\n", "\r\n")
	questions := Parse(raw, 5)
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions from CRLF input, got %d", len(questions))
	}
}

func TestParse_SingleQuestionScenario(t *testing.T) {
	raw := "Question: 2+2=? A)1 B)2 C)4 D)8\nCorrect Answer: C\nExplanation: 2+2=4"

	questions := Parse(raw, 5)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if questions[0].CorrectLabel != "C" {
		t.Fatalf("expected label C, got %q", questions[0].CorrectLabel)
	}

	session := NewSession()
	session.Reset(questions)

	result := session.Submit(session.ID(), "c")
	if !result.Correct {
		t.Fatalf("expected lowercase answer to match: %+v", result)
	}

	advance := session.Advance(session.ID())
	if !advance.Finished {
		t.Fatalf("expected quiz to finish after the only question: %+v", advance)
	}
	if advance.Question != nil {
		t.Errorf("expected no next question, got %+v", advance.Question)
	}
}
