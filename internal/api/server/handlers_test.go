package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/client"
)

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/rag-query/stream", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func dataLines(t *testing.T, resp *http.Response) []string {
	t.Helper()
	defer resp.Body.Close()
	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestModelHandler(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/models")
	require.NoError(t, err)
	defer resp.Body.Close()

	var models client.ModelsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&models))
	assert.Equal(t, DefaultModels, models.Models)
	assert.Equal(t, "llama3:latest", models.DefaultModel)
}

func TestStreamHandlerContentEnvelope(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	resp := post(t, ts, `{"question":"How are secrets managed?","history":["a","b"],"model":"gpt-4o"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := dataLines(t, resp)
	require.NotEmpty(t, lines)
	assert.Equal(t, "data: [DONE]", lines[len(lines)-1])

	var answer bytes.Buffer
	for _, line := range lines[:len(lines)-1] {
		require.True(t, strings.HasPrefix(line, client.DataPrefix))
		text, err := client.ChunkContent([]byte(strings.TrimPrefix(line, client.DataPrefix)))
		require.NoError(t, err)
		answer.WriteString(text)
	}

	want := Answer(client.StreamRequest{Question: "How are secrets managed?", History: []string{"a", "b"}}, "gpt-4o")
	assert.Equal(t, want, answer.String())
	assert.Contains(t, want, "2 history entries")
}

func TestStreamHandlerOpenAIEnvelope(t *testing.T) {
	ts := httptest.NewServer(New(Config{Envelope: EnvelopeOpenAI}).Handler())
	defer ts.Close()

	lines := dataLines(t, post(t, ts, `{"question":"q","history":[]}`))
	require.GreaterOrEqual(t, len(lines), 3)
	assert.JSONEq(t, `{"choices":[{"delta":{"role":"assistant"},"finish_reason":null,"index":0}]}`,
		strings.TrimPrefix(lines[0], client.DataPrefix))
	assert.JSONEq(t, `{"choices":[{"delta":{},"finish_reason":"stop","index":0}]}`,
		strings.TrimPrefix(lines[len(lines)-2], client.DataPrefix))
	assert.Equal(t, "data: [DONE]", lines[len(lines)-1])
}

func TestStreamHandlerRejects(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"question":`},
		{name: "empty question", body: `{"question":"  "}`},
		{name: "unknown model", body: `{"question":"q","model":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.body)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp, err := http.Get(ts.URL + "/rag-query/stream")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusHandler(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.PortWorking)
	assert.True(t, got.ServerWorking)
}

func TestFragments(t *testing.T) {
	assert.Equal(t, []string{"You", " asked", " twice"}, Fragments("You asked twice"))
	assert.Equal(t, []string{"one"}, Fragments("one"))
	assert.Nil(t, Fragments(""))

	text := " leading and  double spaces "
	assert.Equal(t, text, strings.Join(Fragments(text), ""))
}
