// Package executor submits a finished optimized prompt to the target model.
package executor

import (
	"context"
	"fmt"
	"time"

	"pilot/internal/llm"
	"pilot/internal/session"
)

type Executor struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
}

func New(provider llm.Provider, model string, timeout time.Duration) *Executor {
	return &Executor{
		provider: provider,
		model:    model,
		timeout:  timeout,
	}
}

// Execute runs the optimized prompt as a plain user message and returns the
// model's text. No retry here: execution is at-most-once per session, the
// orchestrator decides what a failure means.
func (e *Executor) Execute(ctx context.Context, prompt *session.OptimizedPrompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := &llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: "user", Content: prompt.Text},
		},
		MaxTokens:   4096,
		Temperature: 0.7,
	}

	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("prompt execution: %w", err)
	}

	return resp.Content, nil
}
