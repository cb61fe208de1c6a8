package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/client"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/chat"
)

func feed(values ...string) <-chan chat.Snapshot {
	ch := make(chan chat.Snapshot, len(values))
	for _, v := range values {
		ch <- chat.Snapshot{Text: v}
	}
	close(ch)
	return ch
}

func TestPrintSnapshotsWritesSuffixes(t *testing.T) {
	var out bytes.Buffer
	answer, err := printSnapshots(context.Background(), &out, feed("Hel", "Hello", "Hello, world"))

	require.NoError(t, err)
	assert.Equal(t, "Hello, world", answer)
	assert.Equal(t, "Hello, world", out.String())
}

func TestPrintSnapshotsFallbackNotice(t *testing.T) {
	var out bytes.Buffer
	answer, err := printSnapshots(context.Background(), &out, feed(chat.FallbackNotice))

	require.NoError(t, err)
	assert.Equal(t, chat.FallbackNotice, answer)
	assert.Equal(t, chat.FallbackNotice, out.String())
}

func TestPrintSnapshotsNonExtendingSnapshot(t *testing.T) {
	var out bytes.Buffer
	_, err := printSnapshots(context.Background(), &out, feed("abc", "xyz"))

	require.NoError(t, err)
	assert.Equal(t, "abc\nxyz", out.String())
}

func TestPrintSnapshotsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	answer, err := printSnapshots(ctx, &out, feed("partial"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "partial", answer)
}

func TestPrintSnapshotsNothing(t *testing.T) {
	var out bytes.Buffer
	_, err := printSnapshots(context.Background(), &out, feed())

	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestPrintDirectoryMarksDefault(t *testing.T) {
	var out bytes.Buffer
	printDirectory(&out, client.Directory{
		Choices: []string{"ollama:llama3", "openai:gpt-4o"},
		Default: "openai:gpt-4o",
	})

	assert.Equal(t, "  ollama:llama3\n* openai:gpt-4o\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

// endlessStreamer sends snapshots until its context is cancelled.
type endlessStreamer struct {
	stopped chan struct{}
}

func (s *endlessStreamer) StreamTurn(ctx context.Context, _ string, _ chat.Transcript, _ string) (<-chan chat.Snapshot, error) {
	updates := make(chan chat.Snapshot, 1)
	go func() {
		defer close(s.stopped)
		defer close(updates)
		text := ""
		for {
			text += "x"
			select {
			case updates <- chat.Snapshot{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates, nil
}

func TestAskQuestionCancelsStreamOnWriteError(t *testing.T) {
	streamer := &endlessStreamer{stopped: make(chan struct{})}

	_, err := askQuestion(context.Background(), streamer, failingWriter{}, "q", "")
	require.Error(t, err)

	select {
	case <-streamer.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stream was not cancelled after the write failed")
	}
}

func TestAskQuestionOpenError(t *testing.T) {
	openErr := errors.New("connection refused")
	streamer := streamerFunc(func(context.Context) (<-chan chat.Snapshot, error) {
		return nil, openErr
	})

	var out bytes.Buffer
	_, err := askQuestion(context.Background(), streamer, &out, "q", "")
	assert.ErrorIs(t, err, openErr)
	assert.Empty(t, out.String())
}

type streamerFunc func(ctx context.Context) (<-chan chat.Snapshot, error)

func (f streamerFunc) StreamTurn(ctx context.Context, _ string, _ chat.Transcript, _ string) (<-chan chat.Snapshot, error) {
	return f(ctx)
}
