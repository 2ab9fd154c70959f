// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/ik5/dawcore/utils"
)

const (
	// leading silent frames in front of the first source frame
	primeFrames = 2

	maxRatio = 64.0
)

// FixedResampler converts interleaved audio at a fixed ratio using cubic
// interpolation. Input is consumed in chunks of exactly InputFrames()
// frames; each chunk yields a variable number of output frames.
//
// When downsampling, input first passes a linear-phase low-pass filter
// below the target Nyquist frequency. Its delay is compensated internally.
//
// The first OutputDelay() output frames precede source time zero and are
// expected to be trimmed by the caller. Output frame OutputDelay() sits
// exactly on source frame 0.
type FixedResampler struct {
	channels    int
	srcRate     int64
	dstRate     int64
	ratio       float64 // dstRate / srcRate
	chunkFrames int
	delay       int64

	lp  *lowpass // nil unless downsampling
	lag int      // filter delay in source frames

	hist    []float32
	dropped int64 // frames removed from the front of hist

	inFrames  int64
	outFrames int64
	flushed   bool

	out []float32
}

func NewFixedResampler(srcRate, dstRate, channels, chunkFrames int) (*FixedResampler, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rates %d -> %d", ErrResampler, srcRate, dstRate)
	}
	if channels <= 0 || chunkFrames <= 0 {
		return nil, fmt.Errorf("%w: invalid shape %d channels x %d frames", ErrResampler, channels, chunkFrames)
	}

	ratio := float64(dstRate) / float64(srcRate)
	if ratio > maxRatio || ratio < 1/maxRatio {
		return nil, fmt.Errorf("%w: ratio %.4f out of range", ErrResampler, ratio)
	}

	step := int(math.Ceil(1 / ratio))
	r := &FixedResampler{
		channels:    channels,
		srcRate:     int64(srcRate),
		dstRate:     int64(dstRate),
		ratio:       ratio,
		chunkFrames: chunkFrames,
		// floor(ratio) frames fit in front of source zero without reaching
		// past the primed silence
		delay: int64(dstRate / srcRate),
		hist:  make([]float32, primeFrames*channels, (primeFrames+chunkFrames+step+4)*channels),
		out:   make([]float32, 0, int(math.Ceil(float64(chunkFrames+4)*ratio))*channels),
	}

	if ratio < 1 {
		r.lp = newLowpass(ratio, channels, chunkFrames+tailFrames(ratio))
		r.lag = r.lp.delay()
	}

	return r, nil
}

// InputFrames is the fixed chunk size Process expects, in frames.
func (r *FixedResampler) InputFrames() int { return r.chunkFrames }

// OutputDelay is the number of leading output frames that precede source
// time zero. It is floor(dst/src), so 0 when downsampling.
func (r *FixedResampler) OutputDelay() int { return int(r.delay) }

func (r *FixedResampler) Ratio() float64 { return r.ratio }
func (r *FixedResampler) Channels() int  { return r.channels }

// Process consumes exactly one chunk of InputFrames()*Channels() samples.
// The returned slice is reused by the next call.
func (r *FixedResampler) Process(in []float32) ([]float32, error) {
	if r.flushed {
		return nil, fmt.Errorf("%w: process after flush", ErrResampler)
	}
	if len(in) != r.chunkFrames*r.channels {
		return nil, fmt.Errorf("%w: chunk of %d samples, want %d", ErrResampler, len(in), r.chunkFrames*r.channels)
	}

	r.push(in)
	r.inFrames += int64(r.chunkFrames)

	return r.generate(math.MaxInt64), nil
}

// Flush zero-pads the final partial chunk to the chunk size and drains
// every remaining output frame. Total output over the stream is
// floor(inFrames*ratio) + OutputDelay() frames.
func (r *FixedResampler) Flush(partial []float32) ([]float32, error) {
	if r.flushed {
		return nil, fmt.Errorf("%w: flushed twice", ErrResampler)
	}
	if len(partial)%r.channels != 0 || len(partial) > r.chunkFrames*r.channels {
		return nil, fmt.Errorf("%w: partial chunk of %d samples", ErrResampler, len(partial))
	}
	r.flushed = true
	r.inFrames += int64(len(partial) / r.channels)

	// zero chunk padding plus enough lookahead to interpolate the tail
	padded := make([]float32, r.chunkFrames*r.channels+tailFrames(r.ratio)*r.channels)
	copy(padded, partial)
	r.push(padded)

	limit := r.inFrames*r.dstRate/r.srcRate + r.delay

	return r.generate(limit), nil
}

func tailFrames(ratio float64) int {
	tail := primeFrames + 2
	if ratio < 1 {
		tail += lowpassHalf(ratio)
	}
	return tail
}

func (r *FixedResampler) push(in []float32) {
	if r.lp == nil {
		r.hist = append(r.hist, in...)
		return
	}
	r.hist = r.lp.apply(r.hist, in)
}

// index maps output frame k to the hist frame left of its position and the
// fraction past it. Integer math keeps the position exact for any length.
func (r *FixedResampler) index(k int64) (int, float32) {
	num := (k - r.delay) * r.srcRate
	i := num / r.dstRate
	if num%r.dstRate != 0 && num < 0 {
		i--
	}
	frac := float32(float64(num-i*r.dstRate) / float64(r.dstRate))

	return int(primeFrames + int64(r.lag) + i - r.dropped), frac
}

func (r *FixedResampler) generate(limit int64) []float32 {
	ch := r.channels
	frames := len(r.hist) / ch
	r.out = r.out[:0]

	for r.outFrames < limit {
		i, frac := r.index(r.outFrames)
		if i+2 >= frames {
			break
		}

		n := len(r.out)
		r.out = append(r.out, r.hist[:ch]...)
		utils.CubicInterpolateFrame(r.out[n:n+ch],
			r.hist[(i-1)*ch:i*ch],
			r.hist[i*ch:(i+1)*ch],
			r.hist[(i+1)*ch:(i+2)*ch],
			r.hist[(i+2)*ch:(i+3)*ch],
			frac)
		r.outFrames++
	}

	// keep one frame behind the next position for the cubic window
	next, _ := r.index(r.outFrames)
	if drop := next - 1; drop > 0 {
		drop = min(drop, frames)
		copy(r.hist, r.hist[drop*ch:])
		r.hist = r.hist[:len(r.hist)-drop*ch]
		r.dropped += int64(drop)
	}

	return r.out
}

// lowpassHalf is the one-sided length of the anti-alias filter. Lower
// ratios need a narrower transition band and so more taps.
func lowpassHalf(ratio float64) int {
	return min(int(math.Ceil(16/ratio)), 1024)
}

// lowpass is a Blackman-windowed sinc FIR applied per channel.
type lowpass struct {
	taps []float32
	ch   int
	// last len(taps)-1 input frames, then the block being filtered
	buf []float32
}

func newLowpass(ratio float64, channels, maxFrames int) *lowpass {
	half := lowpassHalf(ratio)
	m := 2*half + 1
	// cutoff in cycles per source frame, a little under the new Nyquist
	fc := 0.45 * ratio

	h := make([]float64, m)
	var sum float64
	for n := range m {
		x := float64(n - half)
		sinc := 2 * fc
		if x != 0 {
			sinc = math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
		}
		w := 0.42 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(m-1)) +
			0.08*math.Cos(4*math.Pi*float64(n)/float64(m-1))
		h[n] = sinc * w
		sum += h[n]
	}
	// unity gain at DC
	taps := make([]float32, m)
	for n := range h {
		taps[n] = float32(h[n] / sum)
	}

	return &lowpass{
		taps: taps,
		ch:   channels,
		buf:  make([]float32, (m-1)*channels, (m-1+maxFrames)*channels),
	}
}

// delay is the group delay in frames.
func (f *lowpass) delay() int { return (len(f.taps) - 1) / 2 }

// apply filters in and appends the result to dst.
func (f *lowpass) apply(dst, in []float32) []float32 {
	ch, m := f.ch, len(f.taps)
	f.buf = append(f.buf, in...)
	frames := len(in) / ch

	for k := range frames {
		// newest input of this output frame
		last := k + m - 1
		for c := range ch {
			var acc float32
			for j, t := range f.taps {
				acc += t * f.buf[(last-j)*ch+c]
			}
			dst = append(dst, acc)
		}
	}

	keep := (m - 1) * ch
	copy(f.buf, f.buf[len(f.buf)-keep:])
	f.buf = f.buf[:keep]

	return dst
}
