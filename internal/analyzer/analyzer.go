// Package analyzer decides whether a request is specific enough to optimize,
// and if not, which clarifying questions to ask.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"pilot/internal/config"
	"pilot/internal/llm"
	"pilot/internal/prompts"
	"pilot/internal/session"
)

const retryBackoff = 500 * time.Millisecond

// Analysis is the analyzer's verdict on the current session.
type Analysis struct {
	// Sufficient means the optimizer can run now.
	Sufficient bool

	// Intent is the normalized description of the user's goal, set when
	// Sufficient.
	Intent string

	// Questions to put to the user, set when not Sufficient.
	Questions []string

	// Rationale is the model's stated understanding, kept for display
	// and the log.
	Rationale string
}

type Analyzer struct {
	provider     llm.Provider
	model        string
	maxQuestions int
	timeout      time.Duration
}

func New(provider llm.Provider, model string, policy config.Policy) *Analyzer {
	return &Analyzer{
		provider:     provider,
		model:        model,
		maxQuestions: policy.MaxQuestions,
		timeout:      policy.Timeout(),
	}
}

// Analyze classifies the session's turn history. Model output that does not
// match the contract degrades to an insufficient verdict with a fallback
// question; only transport-level failures return an error.
func (a *Analyzer) Analyze(ctx context.Context, sess *session.Session) (*Analysis, error) {
	req := &llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: "system", Content: prompts.Analyze},
			{Role: "user", Content: prompts.BuildAnalyzeInput(sess)},
		},
		MaxTokens:   1000,
		Temperature: 0.2,
	}

	resp, err := llm.CompleteWithRetry(ctx, a.provider, req, a.timeout, retryBackoff)
	if err != nil {
		return nil, fmt.Errorf("intent analysis: %w", err)
	}

	return parseAnalysis(resp.Content, a.maxQuestions), nil
}
