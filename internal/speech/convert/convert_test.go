package convert

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(n int) *audio.IntBuffer {
	data := make([]int, n)
	for i := range data {
		data[i] = (i*37)%2000 - 1000
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: 16000, NumChannels: 1},
		Data:           data,
		SourceBitDepth: 16,
	}
}

func TestEncodeWAV(t *testing.T) {
	buf := tone(1600)

	wavData, err := EncodeWAV(buf)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(wavData, []byte("RIFF")))

	decoder := wav.NewDecoder(bytes.NewReader(wavData))
	require.True(t, decoder.IsValidFile())

	decoded, err := decoder.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 16000, decoded.Format.SampleRate)
	assert.Equal(t, 1, decoded.Format.NumChannels)
	assert.Equal(t, buf.Data, decoded.Data)
}

func TestEncodeFLAC(t *testing.T) {
	buf := tone(flacBlockSize + 904)

	flacData, err := EncodeFLAC(buf)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(flacData, []byte("fLaC")))

	stream, err := flac.New(bytes.NewReader(flacData))
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, uint32(16000), stream.Info.SampleRate)
	assert.Equal(t, uint8(1), stream.Info.NChannels)
	assert.Equal(t, uint8(16), stream.Info.BitsPerSample)

	var decoded []int
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		for _, s := range f.Subframes[0].Samples {
			decoded = append(decoded, int(s))
		}
	}
	assert.Equal(t, buf.Data, decoded)
}

func TestEncodeRejects(t *testing.T) {
	stereo := tone(100)
	stereo.Format.NumChannels = 2

	_, err := EncodeFLAC(stereo)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = EncodeWAV(&audio.IntBuffer{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	empty := tone(0)
	_, err = EncodeFLAC(empty)
	assert.Error(t, err)
}
