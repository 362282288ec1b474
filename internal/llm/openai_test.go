package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteOpenAISuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"choices": [{"message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer srv.Close()

	p := NewCustomProvider(srv.URL, "test-key", "test-model")
	resp, err := p.Complete(context.Background(), NewRequest("", "system", "user"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Model != "test-model" {
		t.Errorf("Model = %q", resp.Model)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
}

func TestCompleteOpenAIErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusUnauthorized, ErrAuth},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrUnknown},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))

		p := NewCustomProvider(srv.URL, "test-key", "test-model")
		_, err := p.Complete(context.Background(), NewRequest("", "s", "u"))
		srv.Close()

		ge, ok := AsGateway(err)
		if !ok {
			t.Fatalf("status %d: error %v is not a GatewayError", tt.status, err)
		}
		if ge.Kind != tt.want {
			t.Errorf("status %d: Kind = %v, want %v", tt.status, ge.Kind, tt.want)
		}
		if ge.Status != tt.status {
			t.Errorf("status %d: Status = %d", tt.status, ge.Status)
		}
	}
}

func TestCompleteOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "cmpl-1", "choices": []}`))
	}))
	defer srv.Close()

	p := NewCustomProvider(srv.URL, "", "m")
	_, err := p.Complete(context.Background(), NewRequest("", "s", "u"))
	if _, ok := AsGateway(err); !ok {
		t.Fatalf("error %v is not a GatewayError", err)
	}
}
