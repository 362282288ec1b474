// Package optimizer turns a sufficiently clarified request into an
// optimized prompt.
package optimizer

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

type Optimizer struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
}

func New(provider llm.Provider, model string, policy config.Policy) *Optimizer {
	return &Optimizer{
		provider: provider,
		model:    model,
		timeout:  policy.Timeout(),
	}
}

// Optimize builds the final prompt from the session's request and collected
// clarifications. Unparseable model output degrades through heuristic
// recovery down to a deterministic scaffold; only transport-level failures
// return an error.
func (o *Optimizer) Optimize(ctx context.Context, sess *session.Session) (*session.OptimizedPrompt, error) {
	req := &llm.CompletionRequest{
		Model: o.model,
		Messages: []llm.Message{
			{Role: "system", Content: prompts.Optimize},
			{Role: "user", Content: prompts.BuildOptimizeInput(sess)},
		},
		MaxTokens:   4000,
		Temperature: 0.5,
	}

	resp, err := llm.CompleteWithRetry(ctx, o.provider, req, o.timeout, retryBackoff)
	if err != nil {
		return nil, fmt.Errorf("prompt optimization: %w", err)
	}

	return parseOptimized(resp.Content, sess), nil
}
