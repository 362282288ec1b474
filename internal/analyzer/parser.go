package analyzer

import (
	"encoding/json"
	"strings"
)

// FallbackQuestion is asked when the model's verdict cannot be parsed.
// Asking the user to elaborate is always safe; optimizing a garbled intent
// is not.
const FallbackQuestion = "Could you describe in more detail what you want the AI to produce, and who it is for?"

func parseAnalysis(raw string, maxQuestions int) *Analysis {
	var out struct {
		NeedsClarification bool     `json:"needs_clarification"`
		Questions          []string `json:"clarification_questions"`
		Understanding      string   `json:"understanding"`
	}

	if err := json.Unmarshal([]byte(extractJSON(raw)), &out); err != nil {
		return fallbackAnalysis()
	}

	if out.NeedsClarification {
		questions := cleanQuestions(out.Questions, maxQuestions)
		if len(questions) == 0 {
			questions = []string{FallbackQuestion}
		}
		return &Analysis{
			Sufficient: false,
			Questions:  questions,
			Rationale:  strings.TrimSpace(out.Understanding),
		}
	}

	// JSON that parses but carries no understanding is not a real verdict
	understanding := strings.TrimSpace(out.Understanding)
	if understanding == "" {
		return fallbackAnalysis()
	}

	return &Analysis{
		Sufficient: true,
		Intent:     understanding,
		Rationale:  understanding,
	}
}

func fallbackAnalysis() *Analysis {
	return &Analysis{
		Sufficient: false,
		Questions:  []string{FallbackQuestion},
		Rationale:  "The analysis response could not be interpreted.",
	}
}

func cleanQuestions(questions []string, max int) []string {
	var out []string
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		out = append(out, q)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
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
