package optimizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"pilot/internal/session"
)

// parseOptimized recovers an OptimizedPrompt from model output. Layers:
// proper JSON (fenced or bare), then a line scan for an "optimized prompt"
// section, then a scaffold assembled from the session itself. The last layer
// always succeeds, so optimization never fails on output shape.
func parseOptimized(raw string, sess *session.Session) *session.OptimizedPrompt {
	var out struct {
		OptimizedPrompt string   `json:"optimized_prompt"`
		Explanation     string   `json:"explanation"`
		TaskType        string   `json:"task_type"`
		Constraints     []string `json:"constraints"`
	}

	if err := json.Unmarshal([]byte(extractJSON(raw)), &out); err == nil {
		if text := strings.TrimSpace(out.OptimizedPrompt); text != "" {
			return &session.OptimizedPrompt{
				Text:        text,
				Explanation: strings.TrimSpace(out.Explanation),
				TaskType:    strings.TrimSpace(out.TaskType),
				Constraints: out.Constraints,
			}
		}
	}

	if p := scanForPrompt(raw); p != nil {
		return p
	}

	return scaffold(sess)
}

// scanForPrompt handles output where the model ignored the JSON instruction
// but still labeled its sections in prose.
func scanForPrompt(raw string) *session.OptimizedPrompt {
	if !strings.Contains(strings.ToLower(raw), "optimized prompt") {
		return nil
	}

	var promptLines []string
	explanation := "Extracted from a non-JSON response."
	capture := false

	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		switch {
		case !capture && strings.Contains(lower, "optimized prompt"):
			capture = true
		case capture && (strings.Contains(lower, "explanation") || strings.Contains(lower, "why this works")):
			if _, after, found := strings.Cut(line, ":"); found {
				explanation = strings.TrimSpace(after)
			}
			capture = false
		case capture:
			promptLines = append(promptLines, line)
		}
	}

	text := strings.TrimSpace(strings.Join(promptLines, "\n"))
	if text == "" {
		return nil
	}

	return &session.OptimizedPrompt{
		Text:        text,
		Explanation: explanation,
	}
}

// scaffold builds a usable prompt directly from what the user said. Nothing
// here is invented: the request and clarifications are quoted as given, and
// the prompt tells the downstream model to surface its own assumptions.
func scaffold(sess *session.Session) *session.OptimizedPrompt {
	var b strings.Builder
	b.WriteString("You are an expert assistant. Complete the following task, being specific, well-structured, and clear about the format of your answer.\n\n")
	b.WriteString("Task: ")
	b.WriteString(sess.InitialRequest())
	b.WriteString("\n")

	var constraints []string
	if len(sess.Context) > 0 {
		b.WriteString("\nTake these details from the requester into account:\n")
		for _, qa := range sess.Context {
			b.WriteString(fmt.Sprintf("- %s %s\n", qa.Question, qa.Answer))
			constraints = append(constraints, qa.Answer)
		}
	}

	b.WriteString("\nIf anything important is unspecified, choose a sensible default and say that you did so.")

	return &session.OptimizedPrompt{
		Text:        b.String(),
		Explanation: "The optimization response could not be interpreted, so this prompt restates your request and clarifications directly.",
		Constraints: constraints,
	}
}

// extractJSON strips a markdown code fence if the model wrapped its JSON in
// one, then falls back to slicing from the first '{' to the last '}'.
func extractJSON(raw string) string {
	content := strings.TrimSpace(raw)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		var jsonLines []string
		in := false
		for _, line := range lines {
			if strings.HasPrefix(line, "```") {
				in = !in
				continue
			}
			if in {
				jsonLines = append(jsonLines, line)
			}
		}
		content = strings.Join(jsonLines, "\n")
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
