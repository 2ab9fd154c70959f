// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Backend is an output device stream that pulls audio from a reader.
type Backend interface {
	// Start begins pulling from r on the backend's own thread.
	Start(r io.Reader) error
	// Err reports a runtime device failure, nil while healthy.
	Err() error
	Close() error
}

// BackendConfig describes the stream a Backend must open.
type BackendConfig struct {
	SampleRate   int
	Channels     int
	Format       SampleFormat
	BufferFrames int
}

// BackendFactory opens a Backend. It fails when no device can serve cfg.
type BackendFactory func(cfg BackendConfig) (Backend, error)

// OtoBackend plays through github.com/ebitengine/oto/v3. oto allows one
// context per process, so only one OtoBackend may exist at a time.
type OtoBackend struct {
	ctx    *oto.Context
	player *oto.Player
	closed bool
	mutex  sync.Mutex
}

// NewOtoBackend opens the default output device.
func NewOtoBackend(cfg BackendConfig) (Backend, error) {
	format := oto.FormatFloat32LE
	if cfg.Format == FormatInt16 {
		format = oto.FormatSignedInt16LE
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       format,
		BufferSize:   time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	<-ready

	return &OtoBackend{ctx: ctx}, nil
}

func (b *OtoBackend) Start(r io.Reader) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.player = b.ctx.NewPlayer(r)
	b.player.Play()

	return nil
}

func (b *OtoBackend) Err() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if err := b.ctx.Err(); err != nil {
		return err
	}
	if b.player != nil {
		return b.player.Err()
	}
	return nil
}

func (b *OtoBackend) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.player == nil {
		return nil
	}

	err := b.player.Close()
	b.player = nil
	if err != nil {
		return fmt.Errorf("%w: closing player: %w", ErrBackend, err)
	}

	return b.ctx.Suspend()
}
