package llm

import (
	"context"
	"time"
)

// CompleteWithRetry runs Complete with a per-attempt deadline and retries
// once after backoff if the failure could recover on its own. Auth failures
// and caller cancellation are returned immediately.
func CompleteWithRetry(ctx context.Context, p Provider, req *CompletionRequest, timeout, backoff time.Duration) (*CompletionResponse, error) {
	resp, err := completeOnce(ctx, p, req, timeout)
	if err == nil {
		return resp, nil
	}

	if ge, ok := AsGateway(err); ok && !ge.Retryable() {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, err
	case <-time.After(backoff):
	}

	return completeOnce(ctx, p, req, timeout)
}

func completeOnce(ctx context.Context, p Provider, req *CompletionRequest, timeout time.Duration) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Complete(ctx, req)
}
