package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TurnKind tags how a user message entered the conversation.
type TurnKind int

const (
	// TurnInitial is the opening request of a session.
	TurnInitial TurnKind = iota
	// TurnAnswer replies to an outstanding clarification round.
	TurnAnswer
)

func (k TurnKind) String() string {
	switch k {
	case TurnInitial:
		return "initial"
	case TurnAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// Turn is one user message.
type Turn struct {
	Text string
	Kind TurnKind
	At   time.Time
}

// QA is one resolved clarification: the question asked and the user's answer.
type QA struct {
	Question string
	Answer   string
}

// ClarificationRequest is one round of questions for the user. Immutable
// once produced.
type ClarificationRequest struct {
	Questions []string
	Rationale string
}

// OptimizedPrompt is the final artifact handed to the executor.
type OptimizedPrompt struct {
	Text        string
	Explanation string
	TaskType    string
	Constraints []string
}

// Session is the state of one active conversation. It is plain data; the
// orchestrator owns it and serializes all access.
type Session struct {
	ID      string
	Started time.Time

	Turns   []Turn
	Context []QA

	// Rounds counts completed clarification rounds.
	Rounds int

	// asked remembers every question from prior rounds, normalized,
	// so repeats can be dropped.
	asked map[string]bool
}

func New() *Session {
	return &Session{
		ID:      uuid.NewString(),
		Started: time.Now(),
		asked:   make(map[string]bool),
	}
}

// AddTurn appends a user message.
func (s *Session) AddTurn(text string, kind TurnKind) {
	s.Turns = append(s.Turns, Turn{Text: text, Kind: kind, At: time.Now()})
}

// InitialRequest returns the opening request, or "" before the first turn.
func (s *Session) InitialRequest() string {
	for _, t := range s.Turns {
		if t.Kind == TurnInitial {
			return t.Text
		}
	}
	return ""
}

// RecordAnswers pairs one user reply with the questions of a clarification
// round and folds the result into Context. Non-empty input lines pair with
// questions in order; surplus lines join the last answer. A reply with fewer
// lines than questions is recorded against every question, which keeps the
// common "one combined answer" case lossless.
func (s *Session) RecordAnswers(req *ClarificationRequest, reply string) {
	if req == nil || len(req.Questions) == 0 {
		return
	}

	var lines []string
	for _, line := range strings.Split(reply, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < len(req.Questions) {
		answer := strings.TrimSpace(reply)
		for _, q := range req.Questions {
			s.Context = append(s.Context, QA{Question: q, Answer: answer})
		}
		return
	}

	for i, q := range req.Questions {
		answer := lines[i]
		if i == len(req.Questions)-1 && len(lines) > len(req.Questions) {
			answer = strings.Join(lines[i:], "\n")
		}
		s.Context = append(s.Context, QA{Question: q, Answer: answer})
	}
}

// FilterAsked drops questions already posed in this session and remembers
// the survivors. Order is preserved.
func (s *Session) FilterAsked(questions []string) []string {
	var fresh []string
	for _, q := range questions {
		key := normalizeQuestion(q)
		if key == "" || s.asked[key] {
			continue
		}
		s.asked[key] = true
		fresh = append(fresh, q)
	}
	return fresh
}

func normalizeQuestion(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	return strings.TrimRight(q, "?!. ")
}
