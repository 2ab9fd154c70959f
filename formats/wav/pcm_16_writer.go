// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/dawcore/audio"
)

// ErrInvalidChannels is returned by WriteWAV16 and Encode for a non-positive channel
// count or a sample slice that is not whole frames.
var ErrInvalidChannels = errors.New("samples must be whole frames of a positive channel count")

const writeChunk = 8192

// WriteWAV16 writes interleaved 16-bit PCM as a canonical WAV stream.
// Only an io.Writer is needed, the header sizes are known up front.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return ErrInvalidChannels
	}

	const bytesPerSample = 2
	dataSize := uint32(len(samples) * bytesPerSample)
	frameSize := uint16(channels * bytesPerSample)

	le := binary.LittleEndian
	hdr := make([]byte, 0, 44)
	hdr = append(hdr, "RIFF"...)
	hdr = le.AppendUint32(hdr, 36+dataSize)
	hdr = append(hdr, "WAVEfmt "...)
	hdr = le.AppendUint32(hdr, 16)
	hdr = le.AppendUint16(hdr, formatPCM)
	hdr = le.AppendUint16(hdr, uint16(channels))
	hdr = le.AppendUint32(hdr, uint32(sampleRate))
	hdr = le.AppendUint32(hdr, uint32(sampleRate)*uint32(frameSize))
	hdr = le.AppendUint16(hdr, frameSize)
	hdr = le.AppendUint16(hdr, 8*bytesPerSample)
	hdr = append(hdr, "data"...)
	hdr = le.AppendUint32(hdr, dataSize)

	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("%w: writing wav header: %w", audio.ErrIO, err)
	}

	buf := make([]byte, 0, min(len(samples), writeChunk)*bytesPerSample)
	for len(samples) > 0 {
		n := min(len(samples), writeChunk)
		buf = buf[:0]
		for _, s := range samples[:n] {
			buf = le.AppendUint16(buf, uint16(s))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w: writing wav data: %w", audio.ErrIO, err)
		}
		samples = samples[n:]
	}

	return nil
}
