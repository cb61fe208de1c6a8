package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/chat"
)

const (
	DataPrefix = "data: "
	DoneMarker = "[DONE]"

	readBufferSize = 64 * 1024
	errorBodyLimit = 512
)

// ErrStreamOpen is matched by every error StreamTurn returns.
var ErrStreamOpen = errors.New("failed to open answer stream")

// StreamOpenError describes a stream that could not be established: either
// the request failed in transport or the backend answered with a non-2xx
// status.
type StreamOpenError struct {
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *StreamOpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", ErrStreamOpen, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%v: %s: %s", ErrStreamOpen, e.Status, e.Body)
	}
	return fmt.Sprintf("%v: %s", ErrStreamOpen, e.Status)
}

func (e *StreamOpenError) Unwrap() error {
	return e.Err
}

func (e *StreamOpenError) Is(target error) bool {
	return target == ErrStreamOpen
}

// StreamTurn sends question with the history of prior to the backend and
// returns a channel of snapshots. Every snapshot is the whole answer received
// so far. A stream that ends without any text yields one snapshot with Empty
// set and chat.FallbackNotice as its text. The channel is closed when the
// stream ends or ctx is done; cancelling ctx closes the connection.
//
// Sends block until the snapshot is read. A caller that stops reading before
// the channel is closed must cancel ctx, otherwise the reader goroutine and
// the connection stay open.
func (c *Client) StreamTurn(ctx context.Context, question string, prior chat.Transcript, model string) (<-chan chat.Snapshot, error) {
	clientReq := StreamRequest{
		Question: question,
		History:  prior.History(c.history),
		Model:    ModelName(model, c.labels),
	}

	requestData, err := json.Marshal(clientReq)
	if err != nil {
		return nil, &StreamOpenError{Err: fmt.Errorf("serialize request: %w", err)}
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GetStreamURL(), bytes.NewReader(requestData))
	if err != nil {
		return nil, &StreamOpenError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Request-ID", requestID)

	c.localLogger.Infof("[%s] question %q, %d history entries, model %q",
		requestID, question, len(clientReq.History), clientReq.Model)

	resp, err := c.http.Do(req)
	if err != nil {
		c.localLogger.Errorf("[%s] failed to send request: %v", requestID, err)
		return nil, &StreamOpenError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		c.localLogger.Errorf("[%s] backend answered %s", requestID, resp.Status)
		return nil, &StreamOpenError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	updates := make(chan chat.Snapshot, 1)
	go c.receive(ctx, requestID, resp.Body, updates)
	return updates, nil
}

func (c *Client) receive(ctx context.Context, requestID string, body io.ReadCloser, updates chan<- chat.Snapshot) {
	defer close(updates)
	defer func() {
		if err := body.Close(); err != nil {
			c.localLogger.Errorf("[%s] failed to close response body: %v", requestID, err)
		}
	}()

	reader := bufio.NewReaderSize(body, readBufferSize)

	var answer strings.Builder
	frames := 0
	for {
		line, readErr := reader.ReadString('\n')
		payload, ok := framePayload(strings.TrimRight(line, "\r\n"))
		if ok && payload == DoneMarker {
			break
		}
		if ok {
			frames++
			fragment, err := ChunkContent([]byte(payload))
			switch {
			case err != nil:
				c.localLogger.Warnf("[%s] skipping malformed frame %q: %v", requestID, truncate(payload), err)
			case fragment != "":
				answer.WriteString(fragment)
				if !send(ctx, updates, chat.Snapshot{Text: answer.String()}) {
					c.localLogger.Infof("[%s] stream abandoned after %d frames", requestID, frames)
					return
				}
			}
		}

		if readErr != nil {
			if readErr != io.EOF && ctx.Err() == nil {
				c.localLogger.Warnf("[%s] stream interrupted: %v", requestID, readErr)
			}
			break
		}
	}

	if ctx.Err() != nil {
		c.localLogger.Infof("[%s] stream cancelled after %d frames", requestID, frames)
		return
	}

	if answer.Len() == 0 {
		c.localLogger.Warnf("[%s] stream ended without content", requestID)
		send(ctx, updates, chat.Snapshot{Text: chat.FallbackNotice, Empty: true})
		return
	}
	c.localLogger.Infof("[%s] answer complete: %d frames, %d bytes", requestID, frames, answer.Len())
}

// truncate shortens a payload for logging.
func truncate(payload string) string {
	const limit = 200
	if len(payload) <= limit {
		return payload
	}
	return payload[:limit] + "..."
}

// framePayload returns the payload of an SSE data line. Lines without the data
// prefix (comments, keep-alives, other fields) are reported as not ok.
func framePayload(line string) (string, bool) {
	if line == "" || !strings.HasPrefix(line, DataPrefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(DataPrefix):]), true
}

func send(ctx context.Context, updates chan<- chat.Snapshot, snapshot chat.Snapshot) bool {
	select {
	case updates <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}
