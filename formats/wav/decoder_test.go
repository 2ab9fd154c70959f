// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/dawcore/audio"
	"github.com/ik5/dawcore/internal/audiotest"
)

// wavHeader builds a 44-byte header with arbitrary fmt fields
func wavHeader(format, channels, sampleRate, bits int, dataSize uint32) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(format))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bits/8))
	binary.Write(buf, binary.LittleEndian, uint16(channels*bits/8))
	binary.Write(buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	return buf.Bytes()
}

func readAll(t *testing.T, src audio.Source) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, 6)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
}

func TestDecoder_Mono(t *testing.T) {
	t.Parallel()

	data := audiotest.WAVBytes(8000, 1, []int16{0, 16384, -16384, 32767, -32768})
	src, err := Decoder{}.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 8000, src.SampleRate())
	assert.Equal(t, 1, src.Channels())
	assert.Equal(t, audio.LayoutMono, audio.LayoutOf(src))

	out := readAll(t, src)
	require.Len(t, out, 5)
	assert.InDeltaSlice(t, []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1}, out, 1e-6)
}

func TestDecoder_SurroundLayout(t *testing.T) {
	t.Parallel()

	data := audiotest.WAVBytes(48000, 6, audiotest.ConstantSamples(10, 6, 1000))
	src, err := Decoder{}.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 6, src.Channels())
	assert.Equal(t, audio.DefaultLayout(6), audio.LayoutOf(src))
	assert.Len(t, readAll(t, src), 60)
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := audiotest.WAVBytes(22050, 2, []int16{1, 2, 3, 4})
	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	require.NoError(t, err)

	assert.Equal(t, 22050, src.SampleRate())
	assert.Len(t, readAll(t, src), 4)
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		class   error
		specific error
	}{
		{"not riff", []byte("NOT A WAV FILE DATA AT ALL"), audio.ErrFormat, ErrNotWavFile},
		{"empty", nil, audio.ErrFormat, ErrNotWavFile},
		{"float payload", wavHeader(3, 2, 44100, 32, 0), audio.ErrCodec, ErrOnlyPCMSupported},
		{"12-bit", wavHeader(1, 1, 44100, 12, 0), audio.ErrCodec, ErrUnsupportedBitDepth},
		{"no channels", wavHeader(1, 0, 44100, 16, 0), audio.ErrTrack, ErrNoAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			assert.Nil(t, src)
			assert.ErrorIs(t, err, tt.class)
			assert.ErrorIs(t, err, tt.specific)
		})
	}
}

func TestDecoder_Sniff(t *testing.T) {
	t.Parallel()

	assert.True(t, Decoder{}.Sniff(audiotest.WAVBytes(8000, 1, nil)))
	assert.False(t, Decoder{}.Sniff([]byte("RIFF....AVI ")))
	assert.False(t, Decoder{}.Sniff([]byte("RIFF")))
}

// mockPCMReader serves canned integer samples
type mockPCMReader struct {
	data []int
	pos  int
	err  error
}

func (m *mockPCMReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := copy(buf.Data, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bits int
		in   []int
		want []float32
	}{
		{8, []int{128, 255, 0}, []float32{0, 127.0 / 128.0, -1}},
		{16, []int{16384, -32768}, []float32{0.5, -1}},
		{24, []int{4194304, -8388608}, []float32{0.5, -1}},
		{32, []int{1073741824, -2147483648}, []float32{0.5, -1}},
	}

	for _, tt := range tests {
		s := &wavSource{dec: &mockPCMReader{data: tt.in}, channels: 1, sampleRate: 8000, bitDepth: tt.bits}
		dst := make([]float32, len(tt.in))
		n, err := s.ReadSamples(dst)
		require.Equal(t, len(tt.in), n)
		require.NoError(t, err)
		assert.InDeltaSlice(t, tt.want, dst, 1e-6, "%d bits", tt.bits)
	}
}

func TestSource_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	s := &wavSource{dec: &mockPCMReader{data: []int{1, 2, 3}}, channels: 2, sampleRate: 8000, bitDepth: 16}
	n, err := s.ReadSamples(make([]float32, 8))
	assert.Equal(t, 2, n)
	assert.Equal(t, io.EOF, err)
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	s := &wavSource{dec: &mockPCMReader{err: io.ErrClosedPipe}, channels: 1, sampleRate: 8000, bitDepth: 16}
	n, err := s.ReadSamples(make([]float32, 4))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, audio.ErrCodec)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestSource_EmptyDst(t *testing.T) {
	t.Parallel()

	s := &wavSource{dec: &mockPCMReader{data: []int{1}}, channels: 1, bitDepth: 16}
	n, err := s.ReadSamples(nil)
	assert.Zero(t, n)
	assert.NoError(t, err)
}
