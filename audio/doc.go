// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding contracts and the sample processing
// primitives shared by every format and by the pipeline.
//
// This package contains:
//   - Source and Decoder, implemented by the formats packages
//   - Registry, which picks a decoder by extension hint and content sniffing
//   - Layout and ChannelMap, which fold any speaker layout to stereo
//   - StereoMixer, a Source that applies a ChannelMap per frame
//   - FixedResampler, a chunked cubic sample rate converter
//   - the error taxonomy (ErrFormat, ErrTrack, ErrCodec, ErrIO, ...)
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples counts interleaved samples, not frames. Sources that know
// their speaker positions also implement LayoutSource; the others are
// assumed to follow the WAVE channel order.
//
// # Downmix
//
// A ChannelMap is resolved once per stream:
//
//	m := audio.NewChannelMap(audio.LayoutOf(src))
//	l, r := m.Downmix(frame)
//
// Front left/right pass through unchanged, a lone front left is duplicated,
// unlabeled streams use their first two channels, and everything else is
// folded with centre and surround at -3 dB and LFE at -6 dB.
//
// # Resampling
//
// FixedResampler consumes input in chunks of exactly InputFrames() frames
// and yields a variable number of output frames:
//
//	rs, _ := audio.NewFixedResampler(44100, 48000, 2, 1024)
//	out, _ := rs.Process(chunk)
//	...
//	tail, _ := rs.Flush(partial)
//
// The first OutputDelay() frames of the output precede the source and are
// trimmed by the caller. After trimming, N input frames give exactly
// N*dst/src output frames, rounded down. When downsampling, a windowed-sinc
// low-pass runs ahead of the interpolator to keep content above the target
// Nyquist frequency out of the result.
package audio
