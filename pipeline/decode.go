// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"io"
	"path/filepath"
)

// Decoded is a whole file converted to engine format.
type Decoded struct {
	// Data holds interleaved samples at SampleRate with Channels channels.
	Data       []float32
	Channels   int
	SampleRate int

	OriginalChannels   int
	OriginalSampleRate int
	FilePath           string
	FileName           string
}

// Frames returns the number of frames in Data.
func (d *Decoded) Frames() int {
	if d.Channels == 0 {
		return 0
	}
	return len(d.Data) / d.Channels
}

// DecodeFile decodes path completely. The resampler delay is removed from
// the assembled buffer rather than per chunk.
func DecodeFile(path string, opts Options) (*Decoded, error) {
	s, err := open(path, opts, false)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var data []float32
	for {
		out, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		data = append(data, out...)
	}

	delay := s.OutputDelay() * s.opts.Channels
	if delay >= len(data) {
		data = data[:0]
	} else {
		data = data[delay:]
	}

	return &Decoded{
		Data:               data,
		Channels:           s.opts.Channels,
		SampleRate:         s.opts.SampleRate,
		OriginalChannels:   s.info.Channels,
		OriginalSampleRate: s.info.SampleRate,
		FilePath:           path,
		FileName:           filepath.Base(path),
	}, nil
}

func isEOF(err error) bool { return errors.Is(err, io.EOF) }
