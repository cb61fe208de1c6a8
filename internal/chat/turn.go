// Package chat holds the conversation transcript and drives one streamed turn
// at a time against a RAG backend.
package chat

import (
	"fmt"
)

// FallbackNotice is shown in place of an answer when the backend finished a
// stream without sending any text.
const FallbackNotice = "No response was generated. Please try rephrasing your question."

// Snapshot is one update of a streaming answer. Text is the whole answer
// received so far. Empty marks the single FallbackNotice snapshot of a stream
// that carried no text.
type Snapshot struct {
	Text  string
	Empty bool
}

type TurnState int

const (
	TurnPending TurnState = iota
	TurnStreaming
	TurnDone
	TurnEmpty
	TurnFailed
	TurnCancelled
)

func (s TurnState) String() string {
	switch s {
	case TurnPending:
		return "pending"
	case TurnStreaming:
		return "streaming"
	case TurnDone:
		return "done"
	case TurnEmpty:
		return "empty"
	case TurnFailed:
		return "failed"
	case TurnCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("TurnState(%d)", int(s))
	}
}

// Final reports whether the turn's answer can no longer change.
func (s TurnState) Final() bool {
	return s >= TurnDone
}

// Turn is one question and its answer. Its identity is its position in the
// transcript.
type Turn struct {
	Question string
	Answer   string
	State    TurnState
}

// answered reports whether the answer came from the backend, as opposed to a
// notice generated on this side.
func (t Turn) answered() bool {
	return t.State == TurnDone || t.State == TurnCancelled
}

// HistoryConvention selects how prior turns are flattened for the backend.
type HistoryConvention int

const (
	// HistoryFull sends questions and answers interleaved: u1, a1, u2, a2.
	HistoryFull HistoryConvention = iota
	// HistoryUserOnly sends the questions only: u1, u2.
	HistoryUserOnly
)

func ParseHistoryConvention(s string) (HistoryConvention, error) {
	switch s {
	case "", "full":
		return HistoryFull, nil
	case "user":
		return HistoryUserOnly, nil
	default:
		return HistoryFull, fmt.Errorf("unknown history convention %q", s)
	}
}

func (c HistoryConvention) String() string {
	if c == HistoryUserOnly {
		return "user"
	}
	return "full"
}

// Transcript is the ordered list of turns of one conversation, oldest first.
type Transcript []Turn

// Clone returns a copy that shares nothing with t.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// History flattens the finalized turns of t into the strings sent to the
// backend as context. Turns still in flight are left out, so the active
// question is never sent twice. Failed and empty turns contribute nothing
// since the backend never answered them, and empty strings are dropped.
func (t Transcript) History(convention HistoryConvention) []string {
	history := make([]string, 0, len(t)*2)
	for _, turn := range t {
		if !turn.answered() {
			continue
		}
		if turn.Question != "" {
			history = append(history, turn.Question)
		}
		if convention == HistoryFull && turn.Answer != "" {
			history = append(history, turn.Answer)
		}
	}
	return history
}
