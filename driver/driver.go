// SPDX-License-Identifier: EPL-2.0

// Package driver owns the hardware output stream.
//
// The Mixer is handed to a Backend as an io.Reader and is pulled from the
// device thread. It reads the engine and preview rings, sums them and
// encodes the result. A watcher goroutine polls the backend for runtime
// failures, logs the first one, stops the stream and reports it through
// Options.OnFailure.
package driver

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/dawcore/internal/logging"
)

const DefaultErrPollInterval = 100 * time.Millisecond

type Options struct {
	Backend BackendConfig
	// NewBackend defaults to NewOtoBackend.
	NewBackend      BackendFactory
	ErrPollInterval time.Duration
	Logger          zerolog.Logger

	// OnFailure runs once on the watcher goroutine after a runtime failure
	// stopped the stream. Nothing pops the rings from then on.
	OnFailure func(error)
}

type Driver struct {
	backend Backend
	mixer   *Mixer
	logger  zerolog.Logger
	poll    time.Duration

	onFailure func(error)
	failure   atomic.Pointer[error]

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Open opens the output stream and starts pulling from mixer. A failure
// here means no usable device.
func Open(opts Options, mixer *Mixer) (*Driver, error) {
	if opts.NewBackend == nil {
		opts.NewBackend = NewOtoBackend
	}
	if opts.ErrPollInterval <= 0 {
		opts.ErrPollInterval = DefaultErrPollInterval
	}

	logger := logging.Component(opts.Logger, "driver")

	backend, err := opts.NewBackend(opts.Backend)
	if err != nil {
		return nil, err
	}

	if err := backend.Start(mixer); err != nil {
		_ = backend.Close()
		return nil, err
	}

	d := &Driver{
		backend: backend,
		mixer:   mixer,
		logger:  logger,
		poll:    opts.ErrPollInterval,
		done:    make(chan struct{}),

		onFailure: opts.OnFailure,
	}

	d.wg.Add(1)
	go d.watch()

	logger.Info().
		Int("sample_rate", opts.Backend.SampleRate).
		Int("channels", opts.Backend.Channels).
		Int("buffer_frames", opts.Backend.BufferFrames).
		Stringer("format", opts.Backend.Format).
		Msg("output stream started")

	return d, nil
}

func (d *Driver) watch() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			if err := d.backend.Err(); err != nil {
				d.fail(err)
				return
			}
		}
	}
}

func (d *Driver) fail(err error) {
	d.logger.Error().Err(err).Msg("output stream failed, stopping")
	d.failure.Store(&err)
	_ = d.backend.Close()

	if d.onFailure != nil {
		d.onFailure(err)
	}
}

// Err returns the runtime failure that stopped the stream, if any.
func (d *Driver) Err() error {
	if p := d.failure.Load(); p != nil {
		return *p
	}
	return nil
}

// Close stops the watcher and the stream. It is safe to call twice.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
		d.closeErr = d.backend.Close()
	})

	return d.closeErr
}
