// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ik5/dawcore/internal/metrics"
	"github.com/ik5/dawcore/ringbuf"
	"github.com/ik5/dawcore/utils"
)

// MixerConfig wires the two ring consumers to the device callback.
type MixerConfig struct {
	Channels     int
	BufferFrames int
	Format       SampleFormat

	Engine         *ringbuf.Consumer
	EnginePlaying  func() bool
	Preview        *ringbuf.Consumer
	PreviewPlaying func() bool
}

// Mixer is the device callback. Read is called on the backend's pull
// thread; it never blocks and never allocates.
type Mixer struct {
	format SampleFormat

	engine         *ringbuf.Consumer
	enginePlaying  func() bool
	preview        *ringbuf.Consumer
	previewPlaying func() bool

	mix     []float32
	scratch []float32

	callbacks        prometheus.Counter
	engineUnderruns  prometheus.Counter
	previewUnderruns prometheus.Counter
}

func NewMixer(cfg MixerConfig) *Mixer {
	size := max(cfg.BufferFrames, 1) * max(cfg.Channels, 1)

	return &Mixer{
		format:           cfg.Format,
		engine:           cfg.Engine,
		enginePlaying:    cfg.EnginePlaying,
		preview:          cfg.Preview,
		previewPlaying:   cfg.PreviewPlaying,
		mix:              make([]float32, size),
		scratch:          make([]float32, size),
		callbacks:        metrics.DriverCallbacks,
		engineUnderruns:  metrics.DriverUnderruns.WithLabelValues("engine"),
		previewUnderruns: metrics.DriverUnderruns.WithLabelValues("preview"),
	}
}

func playing(c *ringbuf.Consumer, flag func() bool) bool {
	return c != nil && flag != nil && flag()
}

// Read fills p with mixed audio in the device format. Requests larger than
// the configured buffer are served in several passes.
func (m *Mixer) Read(p []byte) (int, error) {
	m.callbacks.Inc()

	bps := m.format.BytesPerSample()
	total := len(p) / bps

	for off := 0; off < total; off += len(m.mix) {
		n := min(len(m.mix), total-off)
		mix := m.mix[:n]
		clear(mix)

		if playing(m.engine, m.enginePlaying) {
			got := m.engine.Pop(m.scratch[:n])
			copy(mix, m.scratch[:got])
			if got < n {
				m.engineUnderruns.Inc()
			}
		}

		if playing(m.preview, m.previewPlaying) {
			got := m.preview.Pop(m.scratch[:n])
			for i, s := range m.scratch[:got] {
				mix[i] += s
			}
			if got < n {
				m.previewUnderruns.Inc()
			}
		}

		dst := p[off*bps:]
		if m.format == FormatInt16 {
			utils.PutInt16LE(dst, mix)
		} else {
			utils.PutFloat32LE(dst, mix)
		}
	}

	clear(p[total*bps:])

	return len(p), nil
}
