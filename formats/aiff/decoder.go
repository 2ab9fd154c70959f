// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/dawcore/audio"
)

// pcmReader is the part of aiff.Decoder a source pulls from.
type pcmReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	pcm      pcmReader
	rate     int
	channels int
	// scale maps a signed integer sample onto [-1, 1)
	scale float32
	ints  goaudio.IntBuffer
}

func newSource(pcm pcmReader, rate, channels, bits int) *source {
	return &source{
		pcm:      pcm,
		rate:     rate,
		channels: channels,
		scale:    float32(int64(1) << (bits - 1)),
		ints:     goaudio.IntBuffer{Format: pcm.Format()},
	}
}

func (s *source) SampleRate() int { return s.rate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) BufSize() int {
	if c := cap(s.ints.Data); c > 0 {
		return c
	}
	return 4096
}

// Layout labels mono and stereo. AIFF's multichannel orders differ per
// channel count and are left unlabeled.
func (s *source) Layout() audio.Layout {
	switch s.channels {
	case 1:
		return audio.LayoutMono
	case 2:
		return audio.LayoutStereo
	}
	return make(audio.Layout, s.channels)
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.ints.Data) < len(dst) {
		s.ints.Data = make([]int, len(dst))
	}
	s.ints.Data = s.ints.Data[:len(dst)]

	n, err := s.pcm.PCMBuffer(&s.ints)
	if err != nil && !errors.Is(err, io.EOF) {
		if n == 0 {
			return 0, fmt.Errorf("%w: %w", audio.ErrCodec, err)
		}
		// deliver what arrived, the error surfaces on the next call
		err = nil
	}

	// a trailing partial frame is dropped
	n -= n % s.channels
	for i, v := range s.ints.Data[:n] {
		dst[i] = float32(v) / s.scale
	}

	if n == 0 || n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

// Decoder opens AIFF and AIFF-C streams through go-audio/aiff.
type Decoder struct{}

// Sniff reports whether header starts an AIFF or AIFF-C container.
func (Decoder) Sniff(header []byte) bool {
	if len(header) < 12 || !bytes.Equal(header[:4], []byte("FORM")) {
		return false
	}
	kind := header[8:12]
	return bytes.Equal(kind, []byte("AIFF")) || bytes.Equal(kind, []byte("AIFC"))
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading aiff data: %w", audio.ErrIO, err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %w", audio.ErrFormat, ErrNotAiffFile)
	}
	dec.ReadInfo()

	bits := int(dec.BitDepth)
	if bits != 8 && bits != 16 && bits != 24 && bits != 32 {
		return nil, fmt.Errorf("%w: %w (%d bits)", audio.ErrCodec, ErrUnsupportedBitDepth, bits)
	}

	f := dec.Format()
	switch {
	case f == nil:
		return nil, fmt.Errorf("%w: %w", audio.ErrFormat, ErrUnsupportedAiffLayout)
	case f.NumChannels == 0 || f.SampleRate == 0:
		return nil, fmt.Errorf("%w: channels=%d rate=%d", audio.ErrTrack, f.NumChannels, f.SampleRate)
	}

	return newSource(dec, f.SampleRate, f.NumChannels, bits), nil
}
