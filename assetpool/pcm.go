// SPDX-License-Identifier: EPL-2.0

package assetpool

// PCM is an immutable block of interleaved engine-format samples. It is
// shared by pointer and never written after construction.
type PCM struct {
	data       []float32
	channels   int
	sampleRate int
}

// Len returns the number of samples.
func (p *PCM) Len() int { return len(p.data) }

// At returns sample i.
func (p *PCM) At(i int) float32 { return p.data[i] }

func (p *PCM) Channels() int   { return p.channels }
func (p *PCM) SampleRate() int { return p.sampleRate }

// Frames returns the number of frames.
func (p *PCM) Frames() int {
	if p.channels == 0 {
		return 0
	}
	return len(p.data) / p.channels
}

// CopyTo copies samples starting at offset into dst and returns the count.
func (p *PCM) CopyTo(dst []float32, offset int) int {
	if offset < 0 || offset >= len(p.data) {
		return 0
	}
	return copy(dst, p.data[offset:])
}
