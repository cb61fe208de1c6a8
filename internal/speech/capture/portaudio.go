// Package capture reads 16-bit mono PCM from the default microphone.
package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 512 * 9

type Microphone struct {
	stream *portaudio.Stream
	in     []int16
	rate   int
	name   string
}

// Open initializes PortAudio and starts a stream on the default input device.
// Close must be called to release it.
func Open() (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("find default device: %w", err)
	}

	m := &Microphone{
		in:   make([]int16, framesPerBuffer),
		rate: int(device.DefaultSampleRate),
		name: device.Name,
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, device.DefaultSampleRate, len(m.in), &m.in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	m.stream = stream
	return m, nil
}

// Read blocks until the next buffer is captured and returns a copy of it.
func (m *Microphone) Read() ([]int16, error) {
	if err := m.stream.Read(); err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}
	out := make([]int16, len(m.in))
	copy(out, m.in)
	return out, nil
}

func (m *Microphone) SampleRate() int {
	return m.rate
}

func (m *Microphone) Name() string {
	return m.name
}

func (m *Microphone) Close() error {
	defer portaudio.Terminate()
	if err := m.stream.Stop(); err != nil {
		m.stream.Close()
		return err
	}
	return m.stream.Close()
}
