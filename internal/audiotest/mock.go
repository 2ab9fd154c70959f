// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic sources and file fixtures for tests.
package audiotest

import (
	"errors"
	"io"
	"math"

	"github.com/ik5/dawcore/audio"
)

// ErrInjected is returned by sources configured to fail.
var ErrInjected = errors.New("injected read failure")

// Waveform yields the value of channel ch at frame index i.
type Waveform func(i, ch int) float32

// MockSource is an in-memory audio.Source driven by a Waveform.
type MockSource struct {
	rate, channels int
	frames, pos    int
	wave           Waveform
	layout         audio.Layout

	failing map[int]struct{}
	calls   int
	closed  bool
}

// NewMockSource returns a source of frames frames at rate Hz.
func NewMockSource(rate, channels, frames int, wave Waveform) *MockSource {
	return &MockSource{rate: rate, channels: channels, frames: frames, wave: wave}
}

func NewSilentSource(rate, channels, frames int) *MockSource {
	return NewConstantSource(rate, channels, frames, 0)
}

func NewConstantSource(rate, channels, frames int, v float32) *MockSource {
	return NewMockSource(rate, channels, frames, func(int, int) float32 { return v })
}

// NewSineSource plays a full-scale sine of hz on every channel.
func NewSineSource(rate, channels, frames int, hz float64) *MockSource {
	step := 2 * math.Pi * hz / float64(rate)
	return NewMockSource(rate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(step * float64(i)))
	})
}

// NewRampSource emits the frame index on every channel, so ordering and
// passthrough can be checked exactly.
func NewRampSource(rate, channels, frames int) *MockSource {
	return NewMockSource(rate, channels, frames, func(i, _ int) float32 { return float32(i) })
}

// WithLayout labels the channels of m.
func (m *MockSource) WithLayout(l audio.Layout) *MockSource {
	m.layout = l
	return m
}

// FailReads makes the listed ReadSamples calls (counted from 0) return
// ErrInjected and no data.
func (m *MockSource) FailReads(calls ...int) *MockSource {
	if m.failing == nil {
		m.failing = make(map[int]struct{}, len(calls))
	}
	for _, c := range calls {
		m.failing[c] = struct{}{}
	}
	return m
}

func (m *MockSource) SampleRate() int { return m.rate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

func (m *MockSource) Layout() audio.Layout {
	if m.layout != nil {
		return m.layout
	}
	return audio.DefaultLayout(m.channels)
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	call := m.calls
	m.calls++
	if _, fail := m.failing[call]; fail {
		return 0, ErrInjected
	}

	left := m.frames - m.pos
	if left <= 0 {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, left)
	out := dst[:n*m.channels]
	for k := range out {
		out[k] = m.wave(m.pos+k/m.channels, k%m.channels)
	}
	m.pos += n

	if n == left {
		return len(out), io.EOF
	}
	return len(out), nil
}
