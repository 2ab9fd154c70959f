// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/dawcore/audio"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// Channel orders from the Vorbis I specification, section 4.3.9.
var vorbisLayouts = map[int]audio.Layout{
	1: {audio.ChannelFrontLeft},
	2: {audio.ChannelFrontLeft, audio.ChannelFrontRight},
	3: {audio.ChannelFrontLeft, audio.ChannelFrontCenter, audio.ChannelFrontRight},
	4: {audio.ChannelFrontLeft, audio.ChannelFrontRight, audio.ChannelRearLeft, audio.ChannelRearRight},
	5: {audio.ChannelFrontLeft, audio.ChannelFrontCenter, audio.ChannelFrontRight, audio.ChannelRearLeft, audio.ChannelRearRight},
	6: {audio.ChannelFrontLeft, audio.ChannelFrontCenter, audio.ChannelFrontRight, audio.ChannelRearLeft, audio.ChannelRearRight, audio.ChannelLFE},
	7: {audio.ChannelFrontLeft, audio.ChannelFrontCenter, audio.ChannelFrontRight, audio.ChannelSideLeft, audio.ChannelSideRight, audio.ChannelUnlabeled, audio.ChannelLFE},
	8: {audio.ChannelFrontLeft, audio.ChannelFrontCenter, audio.ChannelFrontRight, audio.ChannelSideLeft, audio.ChannelSideRight, audio.ChannelRearLeft, audio.ChannelRearRight, audio.ChannelLFE},
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	frameBuf   []float32
	// pending holds decoded samples that did not fit the caller's buffer
	pending []float32
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.frameBuf) }

func (s *source) Layout() audio.Layout {
	if l, ok := vorbisLayouts[s.channels]; ok {
		return l
	}
	return make(audio.Layout, s.channels)
}

// ReadSamples returns whole frames only. oggvorbis counts its result in
// samples, not frames, and may stop mid-frame; any remainder is kept for the
// next call.
func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	n := copy(dst[:want], s.pending)
	s.pending = s.pending[n:]

	var err error
	for n < want && err == nil {
		if cap(s.frameBuf) < want {
			s.frameBuf = make([]float32, want)
		}
		buf := s.frameBuf[:want-n]

		var got int
		got, err = s.dec.Read(buf)
		n += copy(dst[n:want], buf[:got])
		if got == 0 && err == nil {
			break
		}
	}

	rem := n % s.channels
	if rem != 0 {
		if err == nil {
			s.pending = append(s.pending[:0], dst[n-rem:n]...)
		}
		n -= rem
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %w", audio.ErrCodec, err)
	}

	return n, err
}

type Decoder struct{}

// Sniff checks for the Ogg capture pattern.
func (Decoder) Sniff(header []byte) bool {
	return len(header) >= 4 && bytes.Equal(header[:4], []byte("OggS"))
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", audio.ErrFormat, ErrNotVorbisFile, err)
	}

	if dec.Channels() <= 0 || dec.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: channels=%d rate=%d", audio.ErrTrack, dec.Channels(), dec.SampleRate())
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		frameBuf:   make([]float32, 4096),
	}, nil
}
