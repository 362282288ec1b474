package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pilot/internal/analyzer"
	"pilot/internal/config"
	"pilot/internal/llm"
	"pilot/internal/session"
)

// fakeAnalyzer replays scripted analyses in order, then repeats the last.
type fakeAnalyzer struct {
	script []analyzer.Analysis
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ *session.Session) (*analyzer.Analysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	a := f.script[i]
	return &a, nil
}

type fakeOptimizer struct {
	prompt session.OptimizedPrompt
	err    error
	calls  int
}

func (f *fakeOptimizer) Optimize(_ context.Context, _ *session.Session) (*session.OptimizedPrompt, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p := f.prompt
	return &p, nil
}

type fakeExecutor struct {
	result string
	err    error
	calls  int
}

func (f *fakeExecutor) Execute(_ context.Context, _ *session.OptimizedPrompt) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func sufficient(intent string) analyzer.Analysis {
	return analyzer.Analysis{Sufficient: true, Intent: intent}
}

func insufficient(questions ...string) analyzer.Analysis {
	return analyzer.Analysis{Sufficient: false, Questions: questions}
}

func newTestOrchestrator(a IntentAnalyzer, o PromptOptimizer, e Executor) *Orchestrator {
	return New(a, o, e, config.DefaultPolicy(), nil)
}

func TestDirectPath(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{sufficient("write a haiku")}}
	fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "You are a poet.", Explanation: "adds a persona"}}
	fe := &fakeExecutor{result: "A haiku."}
	or := newTestOrchestrator(fa, fo, fe)

	require.NoError(t, or.SubmitInput(context.Background(), "write me a haiku"))
	assert.Equal(t, AwaitingExecution, or.Phase())
	require.NotNil(t, or.PromptPreview())
	assert.Equal(t, "You are a poet.", or.PromptPreview().Text)
	assert.Equal(t, 1, fa.calls)
	assert.Equal(t, 1, fo.calls)

	result, err := or.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A haiku.", result)
	assert.Equal(t, Done, or.Phase())
	assert.Equal(t, "A haiku.", or.Result())
}

func TestClarificationRound(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{
		insufficient("What is the specific initiative?", "What is your main goal?"),
		sufficient("a persuasive email about a new initiative"),
	}}
	fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "Write a persuasive email."}}
	or := newTestOrchestrator(fa, fo, &fakeExecutor{})

	require.NoError(t, or.SubmitInput(context.Background(),
		"Help me write a persuasive email to my team about a new initiative"))
	assert.Equal(t, AwaitingClarification, or.Phase())
	assert.Equal(t, []string{"What is the specific initiative?", "What is your main goal?"}, or.PendingQuestions())

	require.NoError(t, or.SubmitInput(context.Background(), "weekly demos\nget people to attend"))
	assert.Equal(t, AwaitingExecution, or.Phase())

	qa := or.ContextSnapshot()
	require.Len(t, qa, 2)
	assert.Equal(t, session.QA{Question: "What is the specific initiative?", Answer: "weekly demos"}, qa[0])
	assert.Equal(t, session.QA{Question: "What is your main goal?", Answer: "get people to attend"}, qa[1])
}

func TestTwoRoundsThenSufficient(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{
		insufficient("What topic?"),
		insufficient("How long should it be?"),
		sufficient("a blog post"),
	}}
	fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "Write a blog post."}}
	or := newTestOrchestrator(fa, fo, &fakeExecutor{})

	require.NoError(t, or.SubmitInput(context.Background(), "write something"))
	assert.Equal(t, AwaitingClarification, or.Phase())

	require.NoError(t, or.SubmitInput(context.Background(), "about Go"))
	assert.Equal(t, AwaitingClarification, or.Phase())
	assert.Equal(t, []string{"How long should it be?"}, or.PendingQuestions())

	require.NoError(t, or.SubmitInput(context.Background(), "about 500 words"))
	assert.Equal(t, AwaitingExecution, or.Phase())
	assert.Equal(t, 3, fa.calls)

	qa := or.ContextSnapshot()
	require.Len(t, qa, 2)
	assert.Equal(t, "about Go", qa[0].Answer)
	assert.Equal(t, "about 500 words", qa[1].Answer)
}

func TestRoundBoundForcesOptimization(t *testing.T) {
	// Analyzer that is never satisfied and always invents fresh questions.
	fa := &fakeAnalyzer{script: []analyzer.Analysis{
		insufficient("Question one?"),
		insufficient("Question two?"),
		insufficient("Question three?"),
	}}
	fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "best effort"}}
	or := newTestOrchestrator(fa, fo, &fakeExecutor{})

	require.NoError(t, or.SubmitInput(context.Background(), "vague request"))
	require.NoError(t, or.SubmitInput(context.Background(), "answer one"))
	require.NoError(t, or.SubmitInput(context.Background(), "answer two"))

	// Two completed rounds is the ceiling; the third analysis may not ask.
	assert.Equal(t, AwaitingExecution, or.Phase())
	assert.Equal(t, 1, fo.calls)
}

func TestRepeatedQuestionsAreDropped(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{
		insufficient("What format do you want?"),
		insufficient("what format do you want"), // same question, renormalized
	}}
	fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "best effort"}}
	or := newTestOrchestrator(fa, fo, &fakeExecutor{})

	require.NoError(t, or.SubmitInput(context.Background(), "make a thing"))
	assert.Equal(t, AwaitingClarification, or.Phase())

	// The second round has nothing fresh to ask, so the session proceeds
	// to optimization instead of looping.
	require.NoError(t, or.SubmitInput(context.Background(), "a list"))
	assert.Equal(t, AwaitingExecution, or.Phase())
}

func TestEmptyInputRejected(t *testing.T) {
	or := newTestOrchestrator(&fakeAnalyzer{}, &fakeOptimizer{}, &fakeExecutor{})

	err := or.SubmitInput(context.Background(), "   \n  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, AwaitingInput, or.Phase())
}

func TestInvalidStateLeavesStateUnchanged(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{insufficient("Which language?")}}
	or := newTestOrchestrator(fa, &fakeOptimizer{}, &fakeExecutor{})

	// Execute before any prompt exists.
	_, err := or.Execute(context.Background())
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "Execute", ise.Op)
	assert.Equal(t, AwaitingInput, or.Phase())

	require.NoError(t, or.SubmitInput(context.Background(), "write code"))
	assert.Equal(t, AwaitingClarification, or.Phase())

	// Execute mid-clarification must not disturb the pending round.
	_, err = or.Execute(context.Background())
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, AwaitingClarification, or.Phase())
	assert.Equal(t, []string{"Which language?"}, or.PendingQuestions())
}

func TestSubmitAfterPromptReadyRejected(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{sufficient("x")}}
	fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "p"}}
	or := newTestOrchestrator(fa, fo, &fakeExecutor{result: "out"})

	require.NoError(t, or.SubmitInput(context.Background(), "do the thing"))
	require.Equal(t, AwaitingExecution, or.Phase())

	err := or.SubmitInput(context.Background(), "another thing")
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, AwaitingExecution, or.Phase())

	// Still rejected once the session is done, and the result survives.
	_, err = or.Execute(context.Background())
	require.NoError(t, err)
	err = or.SubmitInput(context.Background(), "one more")
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, Done, or.Phase())
	assert.Equal(t, "out", or.Result())
}

func TestAnalysisFailureSanitized(t *testing.T) {
	gw := &llm.GatewayError{Provider: "groq", Kind: llm.ErrTimeout, Err: context.DeadlineExceeded}
	fa := &fakeAnalyzer{err: gw}
	or := newTestOrchestrator(fa, &fakeOptimizer{}, &fakeExecutor{})

	require.NoError(t, or.SubmitInput(context.Background(), "write a report"))
	assert.Equal(t, Failed, or.Phase())

	msg := or.ErrorMessage()
	assert.NotEmpty(t, msg)
	assert.NotContains(t, msg, "groq")
	assert.NotContains(t, strings.ToLower(msg), "deadline")
}

func TestOptimizationFailure(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{sufficient("x")}}
	fo := &fakeOptimizer{err: &llm.GatewayError{Provider: "openai", Kind: llm.ErrRateLimited}}
	or := newTestOrchestrator(fa, fo, &fakeExecutor{})

	require.NoError(t, or.SubmitInput(context.Background(), "summarize this"))
	assert.Equal(t, Failed, or.Phase())
	assert.NotEmpty(t, or.ErrorMessage())
	assert.NotContains(t, or.ErrorMessage(), "openai")
}

func TestExecutionFailure(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{sufficient("x")}}
	fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "p"}}
	fe := &fakeExecutor{err: &llm.GatewayError{Provider: "ollama", Kind: llm.ErrTimeout}}
	or := newTestOrchestrator(fa, fo, fe)

	require.NoError(t, or.SubmitInput(context.Background(), "go"))
	_, err := or.Execute(context.Background())

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, Failed, or.Phase())
	assert.NotContains(t, or.ErrorMessage(), "ollama")
}

func TestResetFromEveryPhase(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) *Orchestrator
	}{
		{"awaiting_input", func(t *testing.T) *Orchestrator {
			return newTestOrchestrator(&fakeAnalyzer{}, &fakeOptimizer{}, &fakeExecutor{})
		}},
		{"awaiting_clarification", func(t *testing.T) *Orchestrator {
			fa := &fakeAnalyzer{script: []analyzer.Analysis{insufficient("Q?")}}
			or := newTestOrchestrator(fa, &fakeOptimizer{}, &fakeExecutor{})
			require.NoError(t, or.SubmitInput(context.Background(), "hi"))
			return or
		}},
		{"awaiting_execution", func(t *testing.T) *Orchestrator {
			fa := &fakeAnalyzer{script: []analyzer.Analysis{sufficient("x")}}
			fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "p"}}
			or := newTestOrchestrator(fa, fo, &fakeExecutor{})
			require.NoError(t, or.SubmitInput(context.Background(), "hi"))
			return or
		}},
		{"done", func(t *testing.T) *Orchestrator {
			fa := &fakeAnalyzer{script: []analyzer.Analysis{sufficient("x")}}
			fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "p"}}
			or := newTestOrchestrator(fa, fo, &fakeExecutor{result: "out"})
			require.NoError(t, or.SubmitInput(context.Background(), "hi"))
			_, err := or.Execute(context.Background())
			require.NoError(t, err)
			return or
		}},
		{"failed", func(t *testing.T) *Orchestrator {
			fa := &fakeAnalyzer{err: &llm.GatewayError{Kind: llm.ErrTimeout}}
			or := newTestOrchestrator(fa, &fakeOptimizer{}, &fakeExecutor{})
			require.NoError(t, or.SubmitInput(context.Background(), "hi"))
			return or
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			or := tc.setup(t)
			oldID := or.SessionID()

			or.Reset()

			assert.Equal(t, AwaitingInput, or.Phase())
			assert.NotEqual(t, oldID, or.SessionID())
			assert.Nil(t, or.PendingQuestions())
			assert.Nil(t, or.PromptPreview())
			assert.Empty(t, or.Result())
			assert.Empty(t, or.ErrorMessage())
		})
	}
}

func TestEmptyIntentFallsBackToInitialRequest(t *testing.T) {
	fa := &fakeAnalyzer{script: []analyzer.Analysis{{Sufficient: true}}}
	fo := &fakeOptimizer{prompt: session.OptimizedPrompt{Text: "p"}}
	or := newTestOrchestrator(fa, fo, &fakeExecutor{})

	require.NoError(t, or.SubmitInput(context.Background(), "translate this sentence"))
	assert.Equal(t, AwaitingExecution, or.Phase())
}
