// Package orchestrator drives one conversation from informal request to
// executed optimized prompt. It owns the session and its phase machine;
// the analyzer, optimizer, and executor are injected capabilities.
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pilot/internal/analyzer"
	"pilot/internal/config"
	"pilot/internal/session"
)

// Phase is the conversation state. Transitions are explicit; an operation
// invoked in the wrong phase fails with InvalidStateError and changes
// nothing.
type Phase int

const (
	AwaitingInput Phase = iota
	Analyzing
	AwaitingClarification
	Optimizing
	AwaitingExecution
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case AwaitingInput:
		return "awaiting_input"
	case Analyzing:
		return "analyzing"
	case AwaitingClarification:
		return "awaiting_clarification"
	case Optimizing:
		return "optimizing"
	case AwaitingExecution:
		return "awaiting_execution"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// IntentAnalyzer is the clarification capability.
type IntentAnalyzer interface {
	Analyze(ctx context.Context, sess *session.Session) (*analyzer.Analysis, error)
}

// PromptOptimizer is the optimization capability.
type PromptOptimizer interface {
	Optimize(ctx context.Context, sess *session.Session) (*session.OptimizedPrompt, error)
}

// Executor runs the finished prompt. Called at most once per session.
type Executor interface {
	Execute(ctx context.Context, prompt *session.OptimizedPrompt) (string, error)
}

type Orchestrator struct {
	analyzer  IntentAnalyzer
	optimizer PromptOptimizer
	executor  Executor
	policy    config.Policy
	log       *zap.Logger

	// mu serializes SubmitInput/Execute/Reset for this session. Distinct
	// orchestrators share nothing and may run concurrently.
	mu      sync.Mutex
	sess    *session.Session
	phase   Phase
	pending *session.ClarificationRequest
	intent  string
	prompt  *session.OptimizedPrompt
	result  string
	errMsg  string
}

func New(a IntentAnalyzer, o PromptOptimizer, e Executor, policy config.Policy, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		analyzer:  a,
		optimizer: o,
		executor:  e,
		policy:    policy,
		log:       log,
		sess:      session.New(),
		phase:     AwaitingInput,
	}
}

// SubmitInput handles one user message: the opening request when awaiting
// input, or an answer when a clarification round is outstanding. It blocks
// until the session has reached its next stable phase.
func (or *Orchestrator) SubmitInput(ctx context.Context, text string) error {
	or.mu.Lock()
	defer or.mu.Unlock()

	if or.phase != AwaitingInput && or.phase != AwaitingClarification {
		return &InvalidStateError{Op: "SubmitInput", Phase: or.phase}
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	if or.phase == AwaitingClarification {
		or.sess.AddTurn(text, session.TurnAnswer)
		or.sess.RecordAnswers(or.pending, text)
		or.pending = nil
		or.sess.Rounds++
	} else {
		or.sess.AddTurn(text, session.TurnInitial)
	}

	or.phase = Analyzing
	or.log.Info("analyzing",
		zap.String("session", or.sess.ID),
		zap.Int("turns", len(or.sess.Turns)),
		zap.Int("rounds", or.sess.Rounds))

	start := time.Now()
	result, err := or.analyzer.Analyze(ctx, or.sess)
	if err != nil {
		or.fail(msgAnalysisFailed, &AnalysisError{Err: err})
		return nil
	}
	or.log.Info("analysis done",
		zap.String("session", or.sess.ID),
		zap.Bool("sufficient", result.Sufficient),
		zap.Int("questions", len(result.Questions)),
		zap.Duration("took", time.Since(start)))

	if !result.Sufficient && or.sess.Rounds < or.policy.MaxRounds {
		// Drop questions that repeat earlier rounds. If nothing fresh is
		// left, asking again would loop, so proceed with what we have.
		questions := or.sess.FilterAsked(result.Questions)
		if len(questions) > 0 {
			or.pending = &session.ClarificationRequest{
				Questions: questions,
				Rationale: result.Rationale,
			}
			or.phase = AwaitingClarification
			return nil
		}
	}

	or.intent = result.Intent
	if or.intent == "" {
		or.intent = or.sess.InitialRequest()
	}
	return or.optimize(ctx)
}

// optimize runs with or.mu held.
func (or *Orchestrator) optimize(ctx context.Context) error {
	or.phase = Optimizing

	start := time.Now()
	prompt, err := or.optimizer.Optimize(ctx, or.sess)
	if err != nil {
		or.fail(msgOptimizationFailed, &OptimizationError{Err: err})
		return nil
	}
	or.log.Info("optimization done",
		zap.String("session", or.sess.ID),
		zap.String("task_type", prompt.TaskType),
		zap.Duration("took", time.Since(start)))

	or.prompt = prompt
	or.phase = AwaitingExecution
	return nil
}

// Execute runs the optimized prompt. Valid only in AwaitingExecution, so a
// session executes at most once.
func (or *Orchestrator) Execute(ctx context.Context) (string, error) {
	or.mu.Lock()
	defer or.mu.Unlock()

	if or.phase != AwaitingExecution {
		return "", &InvalidStateError{Op: "Execute", Phase: or.phase}
	}

	start := time.Now()
	result, err := or.executor.Execute(ctx, or.prompt)
	if err != nil {
		execErr := &ExecutionError{Err: err}
		or.fail(msgExecutionFailed, execErr)
		return "", execErr
	}
	or.log.Info("execution done",
		zap.String("session", or.sess.ID),
		zap.Duration("took", time.Since(start)))

	or.result = result
	or.phase = Done
	return result, nil
}

// Reset discards the session and returns to AwaitingInput. Valid from any
// phase; this is the only way out of Failed.
func (or *Orchestrator) Reset() {
	or.mu.Lock()
	defer or.mu.Unlock()

	or.log.Info("reset", zap.String("session", or.sess.ID), zap.String("phase", or.phase.String()))

	or.sess = session.New()
	or.phase = AwaitingInput
	or.pending = nil
	or.intent = ""
	or.prompt = nil
	or.result = ""
	or.errMsg = ""
}

// fail runs with or.mu held. The typed error goes to the log with full
// detail; the stored message is the only thing the UI may show.
func (or *Orchestrator) fail(userMsg string, err error) {
	or.log.Error("session failed",
		zap.String("session", or.sess.ID),
		zap.String("phase", or.phase.String()),
		zap.Error(err))
	or.phase = Failed
	or.errMsg = userMsg
}

// Presentation accessors. Snapshots under the lock; safe to call from the
// UI at any time.

func (or *Orchestrator) Phase() Phase {
	or.mu.Lock()
	defer or.mu.Unlock()
	return or.phase
}

func (or *Orchestrator) SessionID() string {
	or.mu.Lock()
	defer or.mu.Unlock()
	return or.sess.ID
}

// PendingQuestions returns the outstanding clarification questions, or nil
// outside AwaitingClarification.
func (or *Orchestrator) PendingQuestions() []string {
	or.mu.Lock()
	defer or.mu.Unlock()
	if or.pending == nil {
		return nil
	}
	out := make([]string, len(or.pending.Questions))
	copy(out, or.pending.Questions)
	return out
}

// PendingRationale returns the analyzer's stated understanding for the
// outstanding round, for optional display.
func (or *Orchestrator) PendingRationale() string {
	or.mu.Lock()
	defer or.mu.Unlock()
	if or.pending == nil {
		return ""
	}
	return or.pending.Rationale
}

// PromptPreview returns the optimized prompt once one exists.
func (or *Orchestrator) PromptPreview() *session.OptimizedPrompt {
	or.mu.Lock()
	defer or.mu.Unlock()
	return or.prompt
}

// Result returns the executed prompt's output, set in Done.
func (or *Orchestrator) Result() string {
	or.mu.Lock()
	defer or.mu.Unlock()
	return or.result
}

// ErrorMessage returns the sanitized failure message, set in Failed.
func (or *Orchestrator) ErrorMessage() string {
	or.mu.Lock()
	defer or.mu.Unlock()
	return or.errMsg
}

// ContextSnapshot returns the clarification Q/A pairs collected so far.
func (or *Orchestrator) ContextSnapshot() []session.QA {
	or.mu.Lock()
	defer or.mu.Unlock()
	out := make([]session.QA, len(or.sess.Context))
	copy(out, or.sess.Context)
	return out
}
