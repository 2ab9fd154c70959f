// SPDX-License-Identifier: EPL-2.0

package dawcore

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ik5/dawcore/assetpool"
	"github.com/ik5/dawcore/config"
	"github.com/ik5/dawcore/driver"
	"github.com/ik5/dawcore/internal/logging"
	"github.com/ik5/dawcore/notify"
	"github.com/ik5/dawcore/pipeline"
	"github.com/ik5/dawcore/preview"
	"github.com/ik5/dawcore/project"
	"github.com/ik5/dawcore/ringbuf"
)

type options struct {
	logger     zerolog.Logger
	newBackend driver.BackendFactory
}

// Option customizes New.
type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBackend replaces the oto device backend.
func WithBackend(f driver.BackendFactory) Option {
	return func(o *options) { o.newBackend = f }
}

// Engine ties the output device, the preview controller, the asset pool and
// the project together. It lives from New until Close.
type Engine struct {
	cfg    *config.Config
	logger zerolog.Logger

	bus     *notify.Bus
	pool    *assetpool.Pool
	preview *preview.Controller
	project *project.Project
	driver  *driver.Driver

	engineProducer *ringbuf.Producer
	transport      atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

// New builds the engine and opens the output stream. An error means the
// audio device could not be opened.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: logging.Component(o.logger, "engine"),
		bus:    notify.NewBus(o.logger),
		pool:   assetpool.New(o.logger),
	}

	engineProd, engineCons := ringbuf.New(cfg.RingCapacity())
	previewProd, previewCons := ringbuf.New(cfg.RingCapacity())
	e.engineProducer = engineProd

	e.preview = preview.New(previewProd, e.bus, preview.Options{
		Pipeline:     e.PipelineOptions(),
		PollInterval: cfg.Preview.PollInterval,
		Logger:       o.logger,
	})

	e.project = project.New(project.Options{
		Pool:    e.pool,
		Decode:  e.decode,
		Emitter: e.bus,
		Preview: e.preview,
		Logger:  o.logger,
	})

	mixer := driver.NewMixer(driver.MixerConfig{
		Channels:       cfg.Engine.Channels,
		BufferFrames:   cfg.Driver.BufferSize,
		Format:         cfg.SampleFormat(),
		Engine:         engineCons,
		EnginePlaying:  e.transport.Load,
		Preview:        previewCons,
		PreviewPlaying: e.preview.Playing,
	})

	d, err := driver.Open(driver.Options{
		Backend: driver.BackendConfig{
			SampleRate:   cfg.Engine.SampleRate,
			Channels:     cfg.Engine.Channels,
			Format:       cfg.SampleFormat(),
			BufferFrames: cfg.Driver.BufferSize,
		},
		NewBackend: o.newBackend,
		Logger:     o.logger,
		OnFailure:  e.outputFailed,
	}, mixer)
	if err != nil {
		return nil, err
	}
	e.driver = d

	e.logger.Info().
		Int("sample_rate", cfg.Engine.SampleRate).
		Int("channels", cfg.Engine.Channels).
		Int("ring_capacity", cfg.RingCapacity()).
		Msg("engine ready")

	return e, nil
}

// outputFailed runs on the driver watcher once the device stopped. The
// rings have no consumer any more, so the preview worker is released and
// the front end is told.
func (e *Engine) outputFailed(err error) {
	e.transport.Store(false)
	e.preview.Halt(err)
	notify.Error(e.bus, fmt.Sprintf("Audio output stopped: %v", err))
}

// PipelineOptions converts engine settings for the decode pipeline.
func (e *Engine) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		SampleRate:      e.cfg.Engine.SampleRate,
		Channels:        e.cfg.Engine.Channels,
		ChunkFrames:     e.cfg.Pipeline.ChunkFrames,
		MaxDecodeErrors: e.cfg.Pipeline.MaxDecodeErrors,
		Logger:          e.logger,
	}
}

func (e *Engine) decode(path string) (*pipeline.Decoded, error) {
	return pipeline.DecodeFile(path, e.PipelineOptions())
}

// PreviewPlay replaces the current preview with path. Failures arrive as
// notifications.
func (e *Engine) PreviewPlay(path string) { e.preview.Play(path) }

// Stop cancels preview playback.
func (e *Engine) Stop() { e.project.Stop() }

func (e *Engine) Project() *project.Project    { return e.project }
func (e *Engine) Pool() *assetpool.Pool        { return e.pool }
func (e *Engine) Preview() *preview.Controller { return e.preview }
func (e *Engine) Notifications() *notify.Bus   { return e.bus }
func (e *Engine) Config() *config.Config       { return e.cfg }

// EngineProducer is the write half of the engine ring, reserved for the
// timeline renderer.
func (e *Engine) EngineProducer() *ringbuf.Producer { return e.engineProducer }

// SetTransportPlaying gates the engine ring in the device callback.
func (e *Engine) SetTransportPlaying(playing bool) { e.transport.Store(playing) }

func (e *Engine) TransportPlaying() bool { return e.transport.Load() }

// Close stops the preview, waits for its worker and closes the device.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.preview.Stop()
		e.preview.Wait()
		e.transport.Store(false)
		e.closeErr = e.driver.Close()
		e.logger.Info().Msg("engine closed")
	})

	return e.closeErr
}
