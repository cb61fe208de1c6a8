// Package vad wraps the Silero voice activity detector.
// See https://github.com/snakers4/silero-vad.
package vad

import (
	"fmt"
	"sync"

	"github.com/go-audio/audio"
	"github.com/streamer45/silero-vad-go/speech"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/speech/sound"
)

// SampleRate is the only rate the detector is configured for.
const SampleRate = 16000

type SileroDetector struct {
	mu       sync.Mutex
	detector *speech.Detector
}

func NewSileroDetector(modelPath string) (*SileroDetector, error) {
	sd, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            modelPath,
		SampleRate:           SampleRate,
		Threshold:            0.5,
		MinSilenceDurationMs: 100,
		SpeechPadMs:          30,
	})
	if err != nil {
		return nil, fmt.Errorf("creating silero detector: %w", err)
	}
	return &SileroDetector{detector: sd}, nil
}

// DetectVoice reports whether buf contains speech. buf must be mono at
// SampleRate.
func (s *SileroDetector) DetectVoice(buf *audio.IntBuffer) (bool, error) {
	if buf.Format == nil || buf.Format.SampleRate != SampleRate || buf.Format.NumChannels != 1 {
		return false, fmt.Errorf("detect voice: want mono %d Hz audio", SampleRate)
	}

	bits := buf.SourceBitDepth
	if bits == 0 {
		bits = 16
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segments, err := s.detector.Detect(sound.NormalizeInt(buf.Data, bits))
	if err != nil {
		return false, fmt.Errorf("detect voice: %w", err)
	}
	return len(segments) > 0, nil
}

func (s *SileroDetector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.Destroy()
}
