package llm

import (
	"context"
	"testing"
	"time"
)

// scriptedProvider fails a fixed number of times, then succeeds.
type scriptedProvider struct {
	failures int
	err      error
	calls    int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Ping(context.Context) error { return nil }

func (p *scriptedProvider) Complete(_ context.Context, _ *CompletionRequest) (*CompletionResponse, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, p.err
	}
	return &CompletionResponse{Content: "ok"}, nil
}

func TestCompleteWithRetrySuccessFirstTry(t *testing.T) {
	p := &scriptedProvider{}
	resp, err := CompleteWithRetry(context.Background(), p, &CompletionRequest{}, time.Second, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" || p.calls != 1 {
		t.Errorf("Content = %q, calls = %d", resp.Content, p.calls)
	}
}

func TestCompleteWithRetryRecoversOnce(t *testing.T) {
	p := &scriptedProvider{
		failures: 1,
		err:      &GatewayError{Provider: "scripted", Kind: ErrTimeout},
	}
	resp, err := CompleteWithRetry(context.Background(), p, &CompletionRequest{}, time.Second, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q", resp.Content)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestCompleteWithRetryGivesUpAfterSecondFailure(t *testing.T) {
	p := &scriptedProvider{
		failures: 5,
		err:      &GatewayError{Provider: "scripted", Kind: ErrTimeout},
	}
	_, err := CompleteWithRetry(context.Background(), p, &CompletionRequest{}, time.Second, time.Millisecond)
	if err == nil {
		t.Fatal("expected an error")
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want exactly 2 attempts", p.calls)
	}
}

func TestCompleteWithRetryAuthNotRetried(t *testing.T) {
	p := &scriptedProvider{
		failures: 5,
		err:      &GatewayError{Provider: "scripted", Kind: ErrAuth, Status: 401},
	}
	_, err := CompleteWithRetry(context.Background(), p, &CompletionRequest{}, time.Second, time.Millisecond)
	if err == nil {
		t.Fatal("expected an error")
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 for an auth failure", p.calls)
	}
}

func TestCompleteWithRetryHonorsCancellation(t *testing.T) {
	p := &scriptedProvider{
		failures: 5,
		err:      &GatewayError{Provider: "scripted", Kind: ErrTimeout},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CompleteWithRetry(ctx, p, &CompletionRequest{}, time.Second, time.Hour)
	if err == nil {
		t.Fatal("expected an error")
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 when the caller has cancelled", p.calls)
	}
}
