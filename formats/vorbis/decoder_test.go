// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/dawcore/audio"
)

// mockOggReader returns at most chunk samples per Read
type mockOggReader struct {
	channels int
	data     []float32
	chunk    int
	err      error
}

func (m *mockOggReader) SampleRate() int { return 48000 }
func (m *mockOggReader) Channels() int   { return m.channels }

func (m *mockOggReader) Read(p []float32) (int, error) {
	if len(m.data) == 0 {
		if m.err != nil {
			return 0, m.err
		}
		return 0, io.EOF
	}
	n := min(len(p), len(m.data))
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}
	copy(p, m.data[:n])
	m.data = m.data[n:]
	return n, nil
}

func seq(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i)
	}
	return out
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("not ogg at all")))
	assert.ErrorIs(t, err, audio.ErrFormat)
	assert.ErrorIs(t, err, ErrNotVorbisFile)
}

func TestDecoder_Sniff(t *testing.T) {
	t.Parallel()

	assert.True(t, Decoder{}.Sniff([]byte("OggS\x00\x02")))
	assert.False(t, Decoder{}.Sniff([]byte("Ogg")))
	assert.False(t, Decoder{}.Sniff([]byte("fLaC")))
}

func TestSource_Layout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channels int
		want     audio.Layout
	}{
		{1, audio.Layout{audio.ChannelFrontLeft}},
		{2, audio.LayoutStereo},
		{6, audio.Layout{audio.ChannelFrontLeft, audio.ChannelFrontCenter, audio.ChannelFrontRight, audio.ChannelRearLeft, audio.ChannelRearRight, audio.ChannelLFE}},
		{10, make(audio.Layout, 10)},
	}

	for _, tt := range tests {
		s := &source{channels: tt.channels}
		assert.Equal(t, tt.want, s.Layout(), "%d channels", tt.channels)
	}
}

func TestSource_SurroundFoldsWithVorbisOrder(t *testing.T) {
	t.Parallel()

	s := &source{channels: 6}
	m := audio.NewChannelMap(s.Layout())
	require.Equal(t, audio.DownmixWeighted, m.Mode)

	// centre only: FL FC FR RL RR LFE
	l, r := m.Downmix([]float32{0, 1, 0, 0, 0, 0})
	assert.InDelta(t, 0.7071, l, 1e-4)
	assert.InDelta(t, 0.7071, r, 1e-4)
}

func TestSource_ReadSamples_WholeFrames(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockOggReader{channels: 2, data: seq(10), chunk: 3}, sampleRate: 48000, channels: 2}

	var got []float32
	buf := make([]float32, 4)
	for {
		n, err := s.ReadSamples(buf)
		require.Zero(t, n%2)
		got = append(got, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, seq(10), got)
}

func TestSource_ReadSamples_OddDst(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockOggReader{channels: 2, data: seq(8)}, sampleRate: 48000, channels: 2}

	n, err := s.ReadSamples(make([]float32, 5))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = s.ReadSamples(make([]float32, 1))
	assert.Zero(t, n)
	assert.NoError(t, err)
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockOggReader{channels: 1, err: errors.New("corrupt packet")}, channels: 1}
	_, err := s.ReadSamples(make([]float32, 4))
	assert.ErrorIs(t, err, audio.ErrCodec)
}
