package orchestrator

import (
	"errors"
	"fmt"
)

// ErrEmptyInput rejects blank submissions without a state change.
var ErrEmptyInput = errors.New("input is empty")

// InvalidStateError reports an operation invoked from the wrong phase.
// It is caller misuse, never retried, and never changes session state.
type InvalidStateError struct {
	Op    string
	Phase Phase
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is not valid in phase %s", e.Op, e.Phase)
}

// AnalysisError wraps a backend failure during intent analysis, after the
// analyzer's own retry is exhausted.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return fmt.Sprintf("analysis failed: %v", e.Err) }
func (e *AnalysisError) Unwrap() error { return e.Err }

// OptimizationError wraps a backend failure during prompt optimization.
type OptimizationError struct {
	Err error
}

func (e *OptimizationError) Error() string { return fmt.Sprintf("optimization failed: %v", e.Err) }
func (e *OptimizationError) Unwrap() error { return e.Err }

// ExecutionError wraps a backend failure while running the final prompt.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return fmt.Sprintf("execution failed: %v", e.Err) }
func (e *ExecutionError) Unwrap() error { return e.Err }

// User-facing failure messages. Deliberately fixed strings: backend error
// detail goes to the log, never to the screen.
const (
	msgAnalysisFailed     = "I couldn't analyze your request because the model backend didn't respond. Use /reset to start over and try again."
	msgOptimizationFailed = "I couldn't build your optimized prompt because the model backend didn't respond. Use /reset to start over and try again."
	msgExecutionFailed    = "Your optimized prompt is ready, but running it against the model failed. Use /reset to start over and try again."
)
