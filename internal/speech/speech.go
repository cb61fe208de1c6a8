// Package speech turns a spoken question into text: it records from a source
// until the speaker goes quiet, checks the recording for voice, and sends it
// to a recognizer.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/logger"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/speech/convert"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/speech/sound"
)

const (
	minMicVolume       = 450
	silenceDelay       = time.Second
	listenTimeout      = 10 * time.Second
	maxSegmentDuration = 25 * time.Second

	recognizerSampleRate = 16000
)

var ErrNoSpeech = errors.New("no speech detected")

// Source is a PCM input such as a microphone.
type Source interface {
	Read() ([]int16, error)
	SampleRate() int
	Close() error
}

type Detector interface {
	DetectVoice(buf *audio.IntBuffer) (bool, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, flacData []byte, sampleRate int) (string, error)
}

type Dictation struct {
	open         func() (Source, error)
	detector     Detector
	recognizer   Recognizer
	recordingDir string
	localLogger  *logger.Logger
}

type Option func(*Dictation)

// WithRecordingDir keeps a WAV copy of every recording in dir.
func WithRecordingDir(dir string) Option {
	return func(d *Dictation) {
		d.recordingDir = dir
	}
}

func New(open func() (Source, error), detector Detector, recognizer Recognizer, opts ...Option) *Dictation {
	d := &Dictation{
		open:        open,
		detector:    detector,
		recognizer:  recognizer,
		localLogger: logger.NewLogger("speech"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run records one utterance and returns its transcript.
func (d *Dictation) Run(ctx context.Context) (string, error) {
	src, err := d.open()
	if err != nil {
		return "", err
	}
	defer func() {
		if err := src.Close(); err != nil {
			d.localLogger.Error("Failed to close audio source:", err)
		}
	}()

	pcm, err := d.record(ctx, src)
	if err != nil {
		return "", err
	}

	// Silero and the recognizer both want 16 kHz.
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: recognizerSampleRate, NumChannels: 1},
		Data:           sound.ConvertInt16ToInt(sound.ResampleInt16(pcm, src.SampleRate(), recognizerSampleRate)),
		SourceBitDepth: 16,
	}
	if len(buf.Data) == 0 {
		return "", ErrNoSpeech
	}
	d.save(buf)

	start := time.Now()
	detected, err := d.detector.DetectVoice(buf)
	if err != nil {
		return "", err
	}
	d.localLogger.Infof("voice detection took %s, detected %v", time.Since(start), detected)
	if !detected {
		return "", ErrNoSpeech
	}

	flacData, err := convert.EncodeFLAC(buf)
	if err != nil {
		return "", fmt.Errorf("FLAC encoding: %w", err)
	}

	text, err := d.recognizer.Recognize(ctx, flacData, recognizerSampleRate)
	if err != nil {
		return "", err
	}
	d.localLogger.Infof("recognized %q", text)
	return text, nil
}

// record reads from src until the volume stays under minMicVolume for
// silenceDelay after speech started. Durations are measured in samples so the
// outcome does not depend on how fast the source delivers them.
func (d *Dictation) record(ctx context.Context, src Source) ([]int16, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	samplesFor := func(dur time.Duration) int {
		return int(int64(rate) * int64(dur) / int64(time.Second))
	}

	var (
		buffer  []int16
		read    int
		quiet   int
		started bool
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in, err := src.Read()
		if err != nil {
			return nil, err
		}
		read += len(in)

		volume := sound.CalculateRMS16(in)
		if volume > minMicVolume {
			if !started {
				d.localLogger.Info("listening...")
			}
			started = true
			quiet = 0
		} else if started {
			quiet += len(in)
		}

		if started {
			buffer = append(buffer, in...)
		}

		switch {
		case !started && read >= samplesFor(listenTimeout):
			return nil, ErrNoSpeech
		case started && quiet >= samplesFor(silenceDelay):
			return buffer, nil
		case started && len(buffer) >= samplesFor(maxSegmentDuration):
			d.localLogger.Warn("recording reached the maximum length")
			return buffer, nil
		}
	}
}

func (d *Dictation) save(buf *audio.IntBuffer) {
	if d.recordingDir == "" {
		return
	}
	wavData, err := convert.EncodeWAV(buf)
	if err != nil {
		d.localLogger.Error("Failed to encode recording:", err)
		return
	}
	name := fmt.Sprintf("dictation_%s.wav", time.Now().Format("20060102_150405.000"))
	if err := os.WriteFile(filepath.Join(d.recordingDir, name), wavData, 0o644); err != nil {
		d.localLogger.Error("Failed to save recording:", err)
	}
}
