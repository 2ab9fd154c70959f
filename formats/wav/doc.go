// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE files into audio.Source and writes 16-bit
// PCM WAV streams.
//
// Decoding is built on github.com/go-audio/wav and accepts integer PCM
// (plain or WAVE_FORMAT_EXTENSIBLE) at 8, 16, 24 and 32 bits with any
// channel count. Channels are labeled in the canonical WAVE speaker order:
//
//	dec := wav.Decoder{}
//	src, err := dec.Decode(file)
//	if err != nil {
//	    // errors.Is(err, audio.ErrFormat), audio.ErrCodec, ...
//	}
//
// Float and compressed WAV payloads are rejected with audio.ErrCodec.
//
// WriteWAV16 writes interleaved int16 samples to any io.Writer:
//
//	wav.WriteWAV16(out, 48000, 2, samples)
package wav
