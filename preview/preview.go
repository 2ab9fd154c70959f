// SPDX-License-Identifier: EPL-2.0

// Package preview plays one audio file at a time into the preview ring.
//
// A Controller runs at most one worker. Play cancels the running worker,
// waits for it to leave, and only then starts the next one, so two workers
// never push into the ring at once. Worker failures are reported as
// notifications, never returned.
//
// Once the output device is gone (Halt) nothing pops the ring any more, so
// the running worker is canceled and later Play calls only notify.
package preview

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/dawcore/internal/logging"
	"github.com/ik5/dawcore/internal/metrics"
	"github.com/ik5/dawcore/notify"
	"github.com/ik5/dawcore/pipeline"
	"github.com/ik5/dawcore/ringbuf"
)

const DefaultPollInterval = 5 * time.Millisecond

// drainSlack is added to the time the device needs to play a full ring.
const drainSlack = 250 * time.Millisecond

// ErrOutputStalled is reported when queued audio is not consumed in time.
var ErrOutputStalled = errors.New("audio output stopped consuming preview")

type Options struct {
	Pipeline pipeline.Options
	// PollInterval is how often Play checks that the previous worker left.
	PollInterval time.Duration
	Logger       zerolog.Logger
}

// State is a snapshot of the controller flags.
type State struct {
	Queued   bool
	Started  bool
	Playing  bool
	Canceled bool
	Path     string
}

type Controller struct {
	playing  atomic.Bool
	started  atomic.Bool
	queued   atomic.Bool
	canceled atomic.Bool
	path     atomic.Pointer[string]
	halted   atomic.Pointer[error]

	// serializes Play callers
	playMu sync.Mutex

	producer *ringbuf.Producer
	emitter  notify.Emitter
	opts     pipeline.Options
	poll     time.Duration
	logger   zerolog.Logger

	// drainTimeout bounds how long the queued tail may sit unconsumed
	drainTimeout time.Duration

	open func(string, pipeline.Options) (*pipeline.Stream, error)
}

// New returns a controller that owns producer, the write half of the
// preview ring.
func New(producer *ringbuf.Producer, emitter notify.Emitter, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	return &Controller{
		producer:     producer,
		emitter:      emitter,
		opts:         opts.Pipeline,
		poll:         opts.PollInterval,
		logger:       logging.Component(opts.Logger, "preview"),
		open:         pipeline.Open,
		drainTimeout: ringDuration(producer.Capacity(), opts.Pipeline) + drainSlack,
	}
}

// ringDuration is the play time of capacity interleaved samples.
func ringDuration(capacity int, o pipeline.Options) time.Duration {
	rate, channels := o.SampleRate, o.Channels
	if rate <= 0 {
		rate = pipeline.DefaultSampleRate
	}
	if channels <= 0 {
		channels = pipeline.DefaultChannels
	}
	return time.Duration(capacity) * time.Second / time.Duration(rate*channels)
}

// Play stops any running preview and starts streaming path. It blocks
// until the previous worker has exited and must not be called from the
// device callback.
func (c *Controller) Play(path string) {
	c.playMu.Lock()
	defer c.playMu.Unlock()

	c.playing.Store(false)
	c.canceled.Store(true)
	c.path.Store(&path)

	if c.queued.Swap(true) {
		c.logger.Debug().Msg("preview already queued")
	}

	for c.started.Load() {
		time.Sleep(c.poll)
	}

	c.queued.Store(false)
	c.canceled.Store(false)

	if herr := c.halted.Load(); herr != nil {
		metrics.PreviewFailures.Inc()
		notify.Error(c.emitter, fmt.Sprintf("Error trying to preview %s: %v", filepath.Base(path), *herr))
		return
	}

	// claimed here rather than in the worker so a later Play cannot slip
	// past the wait above before the goroutine is scheduled
	c.started.Store(true)
	metrics.PreviewStarts.Inc()

	c.logger.Info().Str("path", path).Msg("preview started")

	go c.worker(path)
}

// Stop cancels the running preview, if any. It does not wait.
func (c *Controller) Stop() {
	c.canceled.Store(true)
}

// Halt cancels the running preview for good after the output device
// failed. Play calls that follow notify err instead of starting a worker.
func (c *Controller) Halt(err error) {
	if err == nil {
		err = ErrOutputStalled
	}
	c.halted.Store(&err)
	c.canceled.Store(true)
	c.playing.Store(false)
	c.logger.Warn().Err(err).Msg("preview halted")
}

// Wait blocks until no worker is running.
func (c *Controller) Wait() {
	for c.started.Load() {
		time.Sleep(c.poll)
	}
}

// Playing reports whether the preview ring carries live audio. Safe to call
// from the device callback.
func (c *Controller) Playing() bool { return c.playing.Load() }

func (c *Controller) State() State {
	s := State{
		Queued:   c.queued.Load(),
		Started:  c.started.Load(),
		Playing:  c.playing.Load(),
		Canceled: c.canceled.Load(),
	}
	if p := c.path.Load(); p != nil {
		s.Path = *p
	}
	return s
}

func (c *Controller) worker(path string) {
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("preview worker panic: %v", r)
		}

		c.playing.Store(false)
		if err != nil {
			c.queued.Store(false)
			c.canceled.Store(false)
			metrics.PreviewFailures.Inc()
			c.logger.Warn().Err(err).Str("path", path).Msg("preview failed")
			notify.Error(c.emitter, fmt.Sprintf("Error trying to preview %s: %v", filepath.Base(path), err))
		}
		c.started.Store(false)
	}()

	err = c.stream(path)
}

func (c *Controller) stream(path string) error {
	s, err := c.open(path, c.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	// drop whatever the previous preview left queued
	c.producer.Discard()

	if c.stopped() {
		return nil
	}
	c.playing.Store(true)

	finished, err := pipeline.Run(s, c.producer, c.stopped)
	if err != nil {
		return err
	}

	if finished {
		if err := c.drain(); err != nil {
			return err
		}
	}

	c.logger.Debug().Str("path", path).Bool("finished", finished).Msg("preview worker done")

	return nil
}

// stopped is the cancel predicate handed to the feed loop.
func (c *Controller) stopped() bool {
	return c.canceled.Load() || c.halted.Load() != nil
}

// drain keeps the device pulling until the tail has played. It gives up
// when the ring makes no progress for drainTimeout.
func (c *Controller) drain() error {
	last := c.producer.Occupied()
	deadline := time.Now().Add(c.drainTimeout)

	for last > 0 && !c.stopped() {
		if time.Now().After(deadline) {
			return ErrOutputStalled
		}
		time.Sleep(c.poll)

		if n := c.producer.Occupied(); n < last {
			last = n
			deadline = time.Now().Add(c.drainTimeout)
		}
	}

	return nil
}
