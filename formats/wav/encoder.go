// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/dawcore/audio"
)

// Encode writes interleaved 16-bit PCM to a seekable output through
// go-audio's encoder, which patches the chunk sizes on close.
func Encode(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return fmt.Errorf("%w: %d channels for %d samples", ErrInvalidChannels, channels, len(samples))
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%w: encoding wav: %w", audio.ErrIO, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: finishing wav: %w", audio.ErrIO, err)
	}

	return nil
}
