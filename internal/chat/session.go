package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/logger"
)

var (
	ErrTurnInFlight  = errors.New("a turn is already streaming")
	ErrEmptyQuestion = errors.New("question is empty")
)

// Streamer opens one streamed turn. Every value received from the returned
// channel is the full answer accumulated so far; the channel is closed when
// the turn ends.
type Streamer interface {
	StreamTurn(ctx context.Context, question string, prior Transcript, model string) (<-chan Snapshot, error)
}

// ErrorNotice is the assistant text shown for a turn whose stream could not
// be opened.
func ErrorNotice(err error) string {
	return fmt.Sprintf("Error contacting the RAG backend: %v", err)
}

// Session owns the transcript of one conversation and allows a single turn in
// flight at a time.
type Session struct {
	streamer    Streamer
	localLogger *logger.Logger

	mu         sync.Mutex
	transcript Transcript
	model      string
	cancel     context.CancelFunc
	generation int
}

func NewSession(streamer Streamer) *Session {
	return &Session{
		streamer:    streamer,
		localLogger: logger.NewLogger("session"),
	}
}

// Transcript returns a copy of the current transcript.
func (s *Session) Transcript() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Clone()
}

func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetModel selects the model sent with the next turn. An empty model lets the
// backend choose.
func (s *Session) SetModel(model string) {
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
}

// Busy reports whether a turn is streaming.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Cancel stops the streaming turn, keeping whatever part of the answer already
// arrived.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Clear cancels any streaming turn and empties the transcript. Updates still
// in flight for the cancelled turn are dropped.
func (s *Session) Clear() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.transcript = nil
	s.generation++
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Submit appends a turn for question and streams its answer, calling render
// with a fresh copy of the transcript after every change. It blocks until the
// turn ends. A failure to open the stream is recorded as the turn's answer and
// returned.
func (s *Session) Submit(ctx context.Context, question string, render func(Transcript)) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	prior := s.transcript.Clone()
	index := len(s.transcript)
	s.transcript = append(s.transcript, Turn{Question: question, State: TurnPending})
	turnCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	generation := s.generation
	model := s.model
	snapshot := s.transcript.Clone()
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.generation == generation {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	notify(render, snapshot)

	updates, err := s.streamer.StreamTurn(turnCtx, question, prior, model)
	if err != nil {
		s.localLogger.Errorf("turn %d failed to open: %v", index, err)
		s.update(generation, index, render, func(t *Turn) {
			t.Answer = ErrorNotice(err)
			t.State = TurnFailed
		})
		return err
	}

	var last Snapshot
	for snapshot := range updates {
		last = snapshot
		s.update(generation, index, render, func(t *Turn) {
			t.Answer = snapshot.Text
			t.State = TurnStreaming
		})
	}

	state := TurnDone
	switch {
	case turnCtx.Err() != nil:
		state = TurnCancelled
	case last.Empty:
		state = TurnEmpty
	}
	s.update(generation, index, render, func(t *Turn) {
		t.State = state
	})
	s.localLogger.Infof("turn %d finished: %s", index, state)

	if state == TurnCancelled {
		return turnCtx.Err()
	}
	return nil
}

// update applies fn to the turn at index unless the transcript was cleared
// since the turn started.
func (s *Session) update(generation, index int, render func(Transcript), fn func(*Turn)) {
	s.mu.Lock()
	if s.generation != generation || index >= len(s.transcript) {
		s.mu.Unlock()
		return
	}
	fn(&s.transcript[index])
	snapshot := s.transcript.Clone()
	s.mu.Unlock()

	notify(render, snapshot)
}

func notify(render func(Transcript), t Transcript) {
	if render != nil {
		render(t)
	}
}
