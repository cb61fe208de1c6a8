package server

import (
	"time"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/client"
)

// Envelope selects the frame layout the development backend streams.
type Envelope string

const (
	// EnvelopeContent streams {"content": "..."} frames.
	EnvelopeContent Envelope = "content"
	// EnvelopeOpenAI streams {"choices":[{"delta":{"content":"..."}}]} frames.
	EnvelopeOpenAI Envelope = "openai"
)

var DefaultModels = []client.Model{
	{Name: "llama3:latest", ModelType: "ollama"},
	{Name: "mistral", ModelType: "ollama"},
	{Name: "gpt-4o", ModelType: "openai"},
}

type Config struct {
	Addr         string
	Models       []client.Model
	DefaultModel string
	Envelope     Envelope
	// ChunkDelay is slept between frames so streaming is visible in the UI.
	ChunkDelay time.Duration
}

type status struct {
	PortWorking   bool `json:"port_working"`
	ServerWorking bool `json:"server_working"`
}

type openAIChunk struct {
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Delta        openAIDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
	Index        int         `json:"index"`
}

type openAIDelta struct {
	Content string `json:"content,omitempty"`
	Role    string `json:"role,omitempty"`
}
