package cmd

import (
	"context"
	"errors"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/config"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/logger"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/speech"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/speech/capture"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/speech/recognize"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/speech/vad"
)

// newDictation wires the microphone, voice detector and recognizer. It returns
// a nil func when dictation is unavailable, which the UI reports on /voice.
func newDictation(cfg config.Config) (func(ctx context.Context) (string, error), func()) {
	localLogger := logger.NewLogger("voice")
	noop := func() {}

	recognizer, err := recognize.NewGoogle(recognize.Config{APIKey: cfg.SpeechAPIKey})
	if err != nil {
		if errors.Is(err, recognize.ErrNoAPIKey) {
			localLogger.Info("API_KEY not set, voice input disabled")
		} else {
			localLogger.Error("Failed to create recognizer: ", err)
		}
		return nil, noop
	}

	detector, err := vad.NewSileroDetector(cfg.SileroModel)
	if err != nil {
		localLogger.Error("Failed to load voice detector: ", err)
		return nil, noop
	}

	var opts []speech.Option
	if cfg.Dev && cfg.LogPath != "" {
		opts = append(opts, speech.WithRecordingDir(cfg.LogPath))
	}

	open := func() (speech.Source, error) {
		mic, err := capture.Open()
		if err != nil {
			return nil, err
		}
		localLogger.Info("Recording from ", mic.Name())
		return mic, nil
	}

	dictation := speech.New(open, detector, recognizer, opts...)
	closeDetector := func() {
		if err := detector.Close(); err != nil {
			localLogger.Warn("Failed to release voice detector: ", err)
		}
	}
	return dictation.Run, closeDetector
}
