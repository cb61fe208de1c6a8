package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/client"
)

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status{PortWorking: true, ServerWorking: true}); err != nil {
		s.localLogger.Error("Failed to encode status:", err)
	}
}

func (s *Server) modelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := client.ModelsResponse{Models: s.cfg.Models, DefaultModel: s.cfg.DefaultModel}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response: "+err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var clientReq client.StreamRequest
	if err := json.NewDecoder(r.Body).Decode(&clientReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(clientReq.Question) == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	model := clientReq.Model
	if model == "" {
		model = s.cfg.DefaultModel
	} else if !s.knownModel(model) {
		s.localLogger.Error("Model not found: ", model)
		http.Error(w, "Model not found", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	requestID := r.Header.Get("X-Request-ID")
	s.localLogger.Infof("[%s] streaming answer with %s", requestID, model)

	frames := s.frames(Answer(clientReq, model))
	for _, frame := range frames {
		select {
		case <-r.Context().Done():
			s.localLogger.Infof("[%s] client went away", requestID)
			return
		default:
		}

		if _, err := fmt.Fprintf(w, "%s%s\n\n", client.DataPrefix, frame); err != nil {
			s.localLogger.Error("Failed to write frame:", err)
			return
		}
		flusher.Flush()
		if s.cfg.ChunkDelay > 0 {
			time.Sleep(s.cfg.ChunkDelay)
		}
	}

	fmt.Fprintf(w, "%s%s\n\n", client.DataPrefix, client.DoneMarker)
	flusher.Flush()
	s.localLogger.Infof("[%s] completed response, %d frames", requestID, len(frames))
}

func (s *Server) knownModel(name string) bool {
	for _, m := range s.cfg.Models {
		if m.Name == name {
			return true
		}
	}
	return false
}

// frames encodes the answer as data frame payloads in the configured envelope.
func (s *Server) frames(answer string) []string {
	fragments := Fragments(answer)
	out := make([]string, 0, len(fragments)+2)

	if s.cfg.Envelope == EnvelopeOpenAI {
		out = append(out, mustJSON(openAIChunk{Choices: []openAIChoice{{Delta: openAIDelta{Role: "assistant"}}}}))
		for _, f := range fragments {
			out = append(out, mustJSON(openAIChunk{Choices: []openAIChoice{{Delta: openAIDelta{Content: f}}}}))
		}
		stop := "stop"
		return append(out, mustJSON(openAIChunk{Choices: []openAIChoice{{FinishReason: &stop}}}))
	}

	for _, f := range fragments {
		out = append(out, mustJSON(map[string]string{"content": f}))
	}
	return out
}

// Answer is the canned reply for a request. It repeats what the client sent so
// history forwarding can be checked by eye.
func Answer(req client.StreamRequest, model string) string {
	return fmt.Sprintf("You asked %q using %s with %d history entries. "+
		"This development backend does not retrieve documents.",
		req.Question, model, len(req.History))
}

// Fragments splits text into word sized pieces that concatenate back to text.
func Fragments(text string) []string {
	var out []string
	start := 0
	for i := 1; i < len(text); i++ {
		if text[i] == ' ' {
			out = append(out, text[start:i])
			start = i
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
