package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"pilot/internal/session"
)

//go:embed analyze.md
var Analyze string

//go:embed optimize.md
var Optimize string

// BuildAnalyzeInput assembles the analyzer's user message from the turn
// history. The original request comes first; answered clarifications follow
// as question/answer pairs so the model sees everything it already asked.
func BuildAnalyzeInput(sess *session.Session) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("User's request: %s\n", sess.InitialRequest()))

	if len(sess.Context) > 0 {
		b.WriteString("\nClarifications already provided:\n")
		for _, qa := range sess.Context {
			b.WriteString(fmt.Sprintf("Question: %s\nAnswer: %s\n\n", qa.Question, qa.Answer))
		}
	}

	b.WriteString("\nDecide whether this is enough to write an optimized prompt. Respond with the JSON structure only.")
	return b.String()
}

// BuildOptimizeInput assembles the optimizer's user message: the original
// request plus every clarification Q/A collected during the session.
func BuildOptimizeInput(sess *session.Session) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("User's original request: %s\n\n", sess.InitialRequest()))

	if len(sess.Context) > 0 {
		b.WriteString("Additional clarifications:\n")
		for _, qa := range sess.Context {
			b.WriteString(fmt.Sprintf("Question: %s\nAnswer: %s\n\n", qa.Question, qa.Answer))
		}
	}

	b.WriteString("\nCreate an optimized prompt based on this information. Ensure your response is in valid JSON format with 'optimized_prompt' and 'explanation' fields.")
	return b.String()
}
