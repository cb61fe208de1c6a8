package client

import (
	"encoding/json"
)

// Model is one entry of the backend's model listing.
type Model struct {
	Name      string `json:"name"`
	ModelType string `json:"model_type"`
}

type ModelsResponse struct {
	Models       []Model `json:"models"`
	DefaultModel string  `json:"default_model"`
}

// StreamRequest is the body sent to the streaming endpoint. Model is omitted
// when empty so the backend falls back to its own default.
type StreamRequest struct {
	Question string   `json:"question"`
	History  []string `json:"history"`
	Model    string   `json:"model,omitempty"`
}

// StreamChunk is one decoded data frame. Backends send either a flat content
// field or an OpenAI style choices envelope.
type StreamChunk struct {
	Content *string        `json:"content,omitempty"`
	Choices []StreamChoice `json:"choices,omitempty"`
}

type StreamChoice struct {
	Delta        StreamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason,omitempty"`
	Index        int         `json:"index"`
}

type StreamDelta struct {
	Content *string `json:"content,omitempty"`
	Role    *string `json:"role,omitempty"`
}

// Text returns the fragment carried by the chunk. A non-empty flat content
// field wins over the envelope; missing fields yield "".
func (c StreamChunk) Text() string {
	if c.Content != nil && *c.Content != "" {
		return *c.Content
	}
	if len(c.Choices) > 0 && c.Choices[0].Delta.Content != nil {
		return *c.Choices[0].Delta.Content
	}
	return ""
}

// ChunkContent decodes one frame payload and returns its text fragment.
func ChunkContent(payload []byte) (string, error) {
	var chunk StreamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", err
	}
	return chunk.Text(), nil
}
