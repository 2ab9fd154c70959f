// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ik5/dawcore/audio"
)

// newTestStream wires a Stream directly to src, bypassing file probing.
func newTestStream(t *testing.T, src audio.Source, opts Options) *Stream {
	t.Helper()

	opts, err := opts.withDefaults()
	require.NoError(t, err)

	rs, err := audio.NewFixedResampler(src.SampleRate(), opts.SampleRate, opts.Channels, opts.ChunkFrames)
	require.NoError(t, err)

	return &Stream{
		opts:  opts,
		log:   zerolog.Nop(),
		src:   audio.NewStereoMixer(src),
		rs:    rs,
		chunk: make([]float32, opts.ChunkFrames*opts.Channels),
		trim:  rs.OutputDelay() * opts.Channels,
	}
}
