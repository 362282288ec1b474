package optimizer

import (
	"strings"
	"testing"

	"pilot/internal/session"
)

func testSession() *session.Session {
	s := session.New()
	s.AddTurn("write a product announcement", session.TurnInitial)
	s.RecordAnswers(&session.ClarificationRequest{
		Questions: []string{"Who is the audience?"},
	}, "existing customers")
	return s
}

func TestParseOptimizedJSON(t *testing.T) {
	raw := `{
		"optimized_prompt": "You are a product marketer. Write an announcement.",
		"explanation": "Adds a persona and a concrete deliverable.",
		"task_type": "writing",
		"constraints": ["audience: existing customers"]
	}`

	got := parseOptimized(raw, testSession())
	if got.Text != "You are a product marketer. Write an announcement." {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Explanation != "Adds a persona and a concrete deliverable." {
		t.Errorf("Explanation = %q", got.Explanation)
	}
	if got.TaskType != "writing" {
		t.Errorf("TaskType = %q", got.TaskType)
	}
	if len(got.Constraints) != 1 {
		t.Errorf("Constraints = %v", got.Constraints)
	}
}

func TestParseOptimizedFencedJSON(t *testing.T) {
	raw := "```json\n" +
		`{"optimized_prompt": "Write the thing.", "explanation": "short"}` +
		"\n```"

	got := parseOptimized(raw, testSession())
	if got.Text != "Write the thing." {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestParseOptimizedProseScan(t *testing.T) {
	raw := strings.Join([]string{
		"Here's what I came up with.",
		"",
		"Optimized Prompt:",
		"You are an expert copywriter.",
		"Write a product announcement for existing customers.",
		"",
		"Explanation: persona plus audience makes the output concrete.",
	}, "\n")

	got := parseOptimized(raw, testSession())
	if !strings.Contains(got.Text, "expert copywriter") {
		t.Errorf("Text = %q, want the scanned prompt body", got.Text)
	}
	if strings.Contains(got.Text, "Explanation") {
		t.Errorf("Text = %q, explanation leaked into the prompt", got.Text)
	}
	if got.Explanation != "persona plus audience makes the output concrete." {
		t.Errorf("Explanation = %q", got.Explanation)
	}
}

func TestParseOptimizedScaffoldFallback(t *testing.T) {
	sess := testSession()
	got := parseOptimized("I'm not sure how to help with that.", sess)

	// The scaffold quotes the session verbatim.
	if !strings.Contains(got.Text, "write a product announcement") {
		t.Errorf("Text = %q, want the original request quoted", got.Text)
	}
	if !strings.Contains(got.Text, "existing customers") {
		t.Errorf("Text = %q, want the clarification quoted", got.Text)
	}
	if got.Explanation == "" {
		t.Error("Explanation is empty, want a note about the fallback")
	}
	if len(got.Constraints) != 1 || got.Constraints[0] != "existing customers" {
		t.Errorf("Constraints = %v", got.Constraints)
	}
}

func TestParseOptimizedEmptyPromptFallsThrough(t *testing.T) {
	// Valid JSON with a blank prompt is as useless as no JSON.
	got := parseOptimized(`{"optimized_prompt": "  ", "explanation": "x"}`, testSession())
	if !strings.Contains(got.Text, "write a product announcement") {
		t.Errorf("Text = %q, want the scaffold", got.Text)
	}
}

func TestScanForPromptRequiresBody(t *testing.T) {
	if got := scanForPrompt("Optimized prompt:\nExplanation: nothing above"); got != nil {
		t.Errorf("got %+v, want nil for a section with no body", got)
	}
	if got := scanForPrompt("no labeled sections here"); got != nil {
		t.Errorf("got %+v, want nil without the marker", got)
	}
}
