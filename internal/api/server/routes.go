package server

import (
	"net/http"
)

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/status", s.statusHandler)
	s.mux.HandleFunc("/models", s.modelHandler)
	s.mux.HandleFunc("/rag-query/stream", s.streamHandler)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}
