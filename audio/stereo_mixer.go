// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// StereoMixer folds any Source into interleaved stereo using the source's
// channel layout.
type StereoMixer struct {
	src      Source
	channels int
	cmap     ChannelMap
	tmp      []float32
	// samples of a frame the source split across two reads
	part []float32
}

func NewStereoMixer(src Source) *StereoMixer {
	return &StereoMixer{
		src:      src,
		channels: src.Channels(),
		cmap:     NewChannelMap(LayoutOf(src)),
		tmp:      make([]float32, 4096),
		part:     make([]float32, 0, src.Channels()),
	}
}

func (m *StereoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *StereoMixer) Channels() int   { return 2 }
func (m *StereoMixer) BufSize() int    { return m.src.BufSize() }
func (m *StereoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("closing stereo source: %w", err)
	}

	return nil
}

// Mode reports the downmix rule chosen for the source layout.
func (m *StereoMixer) Mode() DownmixMode { return m.cmap.Mode }

// ReadSamples fills dst with stereo frames. len(dst) must be even.
func (m *StereoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%2 != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	frames := len(dst) / 2
	samplesNeeded := frames * m.channels

	// grow tmp if needed, never shrink
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	m.tmp = m.tmp[:samplesNeeded]

	held := copy(m.tmp, m.part)
	n, err := m.src.ReadSamples(m.tmp[held:])
	if n == 0 {
		// a split frame still held at the end of the source is incomplete
		return 0, err
	}
	n += held
	got := n / m.channels
	m.part = append(m.part[:0], m.tmp[got*m.channels:n]...)
	if got == 0 {
		if err != nil {
			return 0, err
		}
		return m.ReadSamples(dst)
	}

	if m.cmap.Mode == DownmixPassthrough && m.channels == 2 && m.cmap.fl == 0 {
		copy(dst, m.tmp[:got*2])
		return got * 2, err
	}

	for f := range got {
		frame := m.tmp[f*m.channels : (f+1)*m.channels]
		dst[2*f], dst[2*f+1] = m.cmap.Downmix(frame)
	}

	return got * 2, err
}
