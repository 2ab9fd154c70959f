// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/dawcore/audio"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// go-mp3 always emits interleaved stereo 16-bit little-endian PCM
const outChannels = 2

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// carry holds a trailing odd byte from the previous read
	carry    [1]byte
	hasCarry bool
}

func (s *source) SampleRate() int      { return s.sampleRate }
func (s *source) Channels() int        { return outChannels }
func (s *source) Close() error         { return nil }
func (s *source) BufSize() int         { return cap(s.buf) / 2 } // sample capacity, not bytes
func (s *source) Layout() audio.Layout { return audio.LayoutStereo }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	off := 0
	if s.hasCarry {
		s.buf[0] = s.carry[0]
		s.hasCarry = false
		off = 1
	}

	n, err := s.dec.Read(s.buf[off:])
	n += off
	if n < 2 {
		if n == 1 && err == nil {
			s.carry[0] = s.buf[0]
			s.hasCarry = true
		}
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w: %w", audio.ErrCodec, err)
		}
		return 0, err
	}

	if n%2 == 1 {
		s.carry[0] = s.buf[n-1]
		s.hasCarry = true
		n--
	}

	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768.0
	}

	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("%w: %w", audio.ErrCodec, err)
	}

	return samples, err
}

type Decoder struct{}

// Sniff accepts an ID3v2 tag or an MPEG audio frame sync with a valid layer.
func (Decoder) Sniff(header []byte) bool {
	if len(header) >= 3 && bytes.Equal(header[:3], []byte("ID3")) {
		return true
	}
	if len(header) < 2 {
		return false
	}
	return header[0] == 0xFF && header[1]&0xE0 == 0xE0 && header[1]&0x06 != 0
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", audio.ErrFormat, ErrNotMp3File, err)
	}

	if dec.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", audio.ErrTrack, dec.SampleRate())
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
