// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ik5/dawcore/audio"
	"github.com/ik5/dawcore/internal/logging"
	"github.com/ik5/dawcore/internal/metrics"
)

// Stream decodes a file chunk by chunk into engine format: stereo (or
// mono) at the engine sample rate with the resampler delay removed.
//
// A Stream is owned by one goroutine.
type Stream struct {
	info Info
	opts Options
	log  zerolog.Logger

	file *os.File
	src  audio.Source
	rs   *audio.FixedResampler

	chunk []float32 // resampler input being assembled
	fill  int
	read  []float32 // stereo scratch for mono folding

	trim     int // samples still to drop from the front
	failures int
	eof      bool
	done     bool
}

// Open prepares a Stream for path. Errors are wrapped in the audio error
// taxonomy.
func Open(path string, opts Options) (*Stream, error) {
	return open(path, opts, true)
}

func open(path string, opts Options, trimDelay bool) (*Stream, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	raw, f, info, err := openSource(path, opts.Registry)
	if err != nil {
		return nil, err
	}

	rs, err := audio.NewFixedResampler(info.SampleRate, opts.SampleRate, opts.Channels, opts.ChunkFrames)
	if err != nil {
		_ = raw.Close()
		_ = f.Close()
		return nil, err
	}

	s := &Stream{
		info:  info,
		opts:  opts,
		log:   logging.Component(opts.Logger, "pipeline").With().Str("file", info.Path).Logger(),
		file:  f,
		src:   audio.NewStereoMixer(raw),
		rs:    rs,
		chunk: make([]float32, opts.ChunkFrames*opts.Channels),
	}
	if opts.Channels == 1 {
		s.read = make([]float32, opts.ChunkFrames*2)
	}
	if trimDelay {
		s.trim = rs.OutputDelay() * opts.Channels
	}

	s.log.Debug().
		Str("format", info.Format).
		Int("channels", info.Channels).
		Int("sample_rate", info.SampleRate).
		Stringer("layout", info.Layout).
		Int("delay_frames", rs.OutputDelay()).
		Msg("stream opened")

	return s, nil
}

// Info describes the source file.
func (s *Stream) Info() Info { return s.info }

// OutputDelay is the resampler delay in frames.
func (s *Stream) OutputDelay() int { return s.rs.OutputDelay() }

// Next returns the next block of engine-format samples. The slice is reused
// by the following call. At the end of the source Next returns io.EOF.
func (s *Stream) Next() ([]float32, error) {
	for !s.done {
		out, err := s.step()
		if err != nil {
			return nil, err
		}

		out = s.trimFront(out)
		if len(out) > 0 {
			return out, nil
		}
	}

	return nil, io.EOF
}

// step feeds one chunk (or the final partial chunk) to the resampler.
func (s *Stream) step() ([]float32, error) {
	for s.fill < len(s.chunk) && !s.eof {
		n, err := s.readInto(s.chunk[s.fill:])
		s.fill += n

		switch {
		case err == nil && n > 0:
			s.failures = 0
		case errors.Is(err, io.EOF):
			s.eof = true
		default:
			// a read that makes no progress counts as a failure too
			s.failures++
			metrics.PipelinePacketErrors.Inc()
			s.log.Debug().Err(err).Int("consecutive", s.failures).Msg("skipping undecodable packet")
			if s.failures >= s.opts.MaxDecodeErrors {
				s.log.Warn().Int("errors", s.failures).Msg("too many decode errors, ending stream")
				s.eof = true
			}
		}
	}

	if s.fill == len(s.chunk) {
		s.fill = 0
		return s.rs.Process(s.chunk)
	}

	s.done = true
	return s.rs.Flush(s.chunk[:s.fill])
}

func (s *Stream) readInto(dst []float32) (int, error) {
	if s.opts.Channels == 2 {
		return s.src.ReadSamples(dst)
	}

	stereo := s.read[:len(dst)*2]
	n, err := s.src.ReadSamples(stereo)
	frames := n / 2
	for i := range frames {
		dst[i] = (stereo[2*i] + stereo[2*i+1]) / 2
	}

	return frames, err
}

func (s *Stream) trimFront(out []float32) []float32 {
	if s.trim == 0 {
		return out
	}

	drop := min(s.trim, len(out))
	s.trim -= drop

	return out[drop:]
}

// Close releases the decoder and the file.
func (s *Stream) Close() error {
	err := s.src.Close()
	if ferr := s.file.Close(); ferr != nil && err == nil {
		err = fmt.Errorf("%w: %w", audio.ErrIO, ferr)
	}

	return err
}
