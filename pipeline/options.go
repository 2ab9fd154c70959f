// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ik5/dawcore/audio"
)

const (
	DefaultSampleRate      = 48000
	DefaultChannels        = 2
	DefaultChunkFrames     = 1024
	DefaultMaxDecodeErrors = 16
)

// Options describes the engine format a pipeline converts to.
type Options struct {
	// SampleRate of the produced audio.
	SampleRate int
	// Channels of the produced audio, 1 or 2.
	Channels int
	// ChunkFrames is the fixed resampler input size.
	ChunkFrames int
	// MaxDecodeErrors consecutive read failures end a stream early.
	MaxDecodeErrors int

	// Registry defaults to DefaultRegistry.
	Registry *audio.Registry
	Logger   zerolog.Logger
}

// DefaultOptions returns 48 kHz stereo options with a Nop logger.
func DefaultOptions() Options {
	return Options{
		SampleRate:      DefaultSampleRate,
		Channels:        DefaultChannels,
		ChunkFrames:     DefaultChunkFrames,
		MaxDecodeErrors: DefaultMaxDecodeErrors,
		Logger:          zerolog.Nop(),
	}
}

func (o Options) withDefaults() (Options, error) {
	if o.SampleRate == 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Channels == 0 {
		o.Channels = DefaultChannels
	}
	if o.ChunkFrames == 0 {
		o.ChunkFrames = DefaultChunkFrames
	}
	if o.MaxDecodeErrors == 0 {
		o.MaxDecodeErrors = DefaultMaxDecodeErrors
	}
	if o.Registry == nil {
		o.Registry = DefaultRegistry()
	}

	if o.SampleRate < 0 || o.ChunkFrames < 0 || o.MaxDecodeErrors < 0 {
		return o, fmt.Errorf("%w: invalid options %+v", audio.ErrResampler, o)
	}
	if o.Channels != 1 && o.Channels != 2 {
		return o, fmt.Errorf("%w: engine channels must be 1 or 2, got %d", audio.ErrResampler, o.Channels)
	}

	return o, nil
}
