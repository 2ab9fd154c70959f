// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_FileDecodesBack(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 4000)
	for i := range samples {
		samples[i] = int16((i - 2000) * 8)
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, Encode(f, 22050, 2, samples))
	require.NoError(t, f.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = in.Close() })

	src, err := Decoder{}.Decode(in)
	require.NoError(t, err)
	assert.Equal(t, 22050, src.SampleRate())
	assert.Equal(t, 2, src.Channels())

	out := readAll(t, src)
	require.Len(t, out, len(samples))
	assert.InDelta(t, float32(samples[0])/32768.0, out[0], 1e-6)
	assert.InDelta(t, float32(samples[3999])/32768.0, out[3999], 1e-6)
}

func TestEncode_InvalidChannels(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.ErrorIs(t, Encode(f, 8000, 2, []int16{1, 2, 3}), ErrInvalidChannels)
}
