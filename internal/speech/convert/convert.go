// Package convert encodes captured PCM into the containers the recognizer and
// the recording dump use.
package convert

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/orcaman/writerseeker"
)

const (
	flacBlockSize   = 4096
	defaultBitDepth = 16
	wavFormatPCM    = 1
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

func bitDepth(buf *audio.IntBuffer) int {
	if buf.SourceBitDepth > 0 {
		return buf.SourceBitDepth
	}
	return defaultBitDepth
}

func check(buf *audio.IntBuffer) error {
	if buf == nil || buf.Format == nil {
		return fmt.Errorf("%w: missing format", ErrUnsupportedFormat)
	}
	if buf.Format.NumChannels != 1 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, buf.Format.NumChannels)
	}
	if len(buf.Data) == 0 {
		return errors.New("no samples to encode")
	}
	return nil
}

// EncodeWAV writes buf as a PCM WAV file in memory.
func EncodeWAV(buf *audio.IntBuffer) ([]byte, error) {
	if err := check(buf); err != nil {
		return nil, err
	}

	// Emulate a file in RAM so that we don't have to create a real file.
	file := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(file, buf.Format.SampleRate, bitDepth(buf), buf.Format.NumChannels, wavFormatPCM)

	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}

	wavData, err := io.ReadAll(file.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading WAV data: %w", err)
	}
	return wavData, nil
}

// EncodeFLAC writes buf as a mono FLAC stream with verbatim subframes.
func EncodeFLAC(buf *audio.IntBuffer) ([]byte, error) {
	if err := check(buf); err != nil {
		return nil, err
	}
	bits := bitDepth(buf)

	file := &writerseeker.WriterSeeker{}
	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(buf.Format.SampleRate),
		NChannels:     1,
		BitsPerSample: uint8(bits),
		NSamples:      uint64(len(buf.Data)),
	}

	enc, err := flac.NewEncoder(file, info)
	if err != nil {
		return nil, fmt.Errorf("creating FLAC encoder: %w", err)
	}

	for i := 0; i < len(buf.Data); i += flacBlockSize {
		end := i + flacBlockSize
		if end > len(buf.Data) {
			end = len(buf.Data)
		}
		samples := make([]int32, end-i)
		for j, v := range buf.Data[i:end] {
			samples[j] = int32(v)
		}

		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(len(samples)),
				SampleRate:        uint32(buf.Format.SampleRate),
				Channels:          frame.ChannelsMono,
				BitsPerSample:     uint8(bits),
			},
			Subframes: []*frame.Subframe{
				{
					SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
					Samples:   samples,
					NSamples:  len(samples),
				},
			},
		}
		if err := enc.WriteFrame(f); err != nil {
			enc.Close()
			return nil, fmt.Errorf("writing FLAC frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing FLAC encoder: %w", err)
	}

	flacData, err := io.ReadAll(file.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading FLAC data: %w", err)
	}
	return flacData, nil
}
