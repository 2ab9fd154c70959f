// SPDX-License-Identifier: EPL-2.0

// Package project holds the track list, master, buses and timing of the
// open project.
//
// Audio sources are resolved through the asset pool before the project lock
// is taken, so the two locks are never held together. Load failures are
// returned to the caller and also emitted once as an error notification.
package project

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ik5/dawcore/assetpool"
	"github.com/ik5/dawcore/internal/logging"
	"github.com/ik5/dawcore/notify"
)

// Stopper cancels preview playback.
type Stopper interface {
	Stop()
}

type Options struct {
	Pool    *assetpool.Pool
	Decode  assetpool.DecodeFunc
	Emitter notify.Emitter
	Preview Stopper
	Logger  zerolog.Logger
}

type Project struct {
	pool    *assetpool.Pool
	decode  assetpool.DecodeFunc
	emitter notify.Emitter
	preview Stopper
	logger  zerolog.Logger

	mu            sync.RWMutex
	ppq           uint16
	tempo         float64
	timeSignature TimeSignature
	master        Master
	tracks        []*Track
	buses         []*Bus
}

func New(opts Options) *Project {
	return &Project{
		pool:          opts.Pool,
		decode:        opts.Decode,
		emitter:       opts.Emitter,
		preview:       opts.Preview,
		logger:        logging.Component(opts.Logger, "project"),
		ppq:           DefaultPPQ,
		tempo:         DefaultTempo,
		timeSignature: TimeSignature{Numerator: 4, Denominator: 4},
		master:        defaultMaster(),
	}
}

func (p *Project) resolve(ctx context.Context, path string) (assetpool.ID, error) {
	id, err := p.pool.LoadOrDecode(ctx, path, p.decode)
	if err != nil {
		p.logger.Warn().Err(err).Str("path", path).Msg("loading audio file failed")
		notify.Error(p.emitter, fmt.Sprintf("Error trying to load audio file: %v", err))
		return "", err
	}
	return id, nil
}

// AddAudioTrack appends a track, optionally backed by the audio file at
// sourcePath. On a load failure the track list is left untouched.
func (p *Project) AddAudioTrack(ctx context.Context, sourcePath string) (*Track, error) {
	var source assetpool.ID
	if sourcePath != "" {
		id, err := p.resolve(ctx, sourcePath)
		if err != nil {
			return nil, err
		}
		source = id
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	t := newTrack(defaultTrackName(len(p.tracks)+1), source)
	p.tracks = append(p.tracks, t)

	p.logger.Debug().Str("track", t.ID).Str("source", string(source)).Msg("track added")

	return t.clone(), nil
}

// AssignAudioToTrack loads sourcePath and makes it the source of trackID.
func (p *Project) AssignAudioToTrack(ctx context.Context, trackID, sourcePath string) (assetpool.ID, error) {
	if sourcePath == "" {
		return "", ErrNoSource
	}

	id, err := p.resolve(ctx, sourcePath)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.findTrack(trackID)
	if t == nil {
		p.logger.Warn().Str("track", trackID).Msg("assign audio: track not found")
		notify.Error(p.emitter, "Error trying to assign audio: track not found")
		return "", fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}

	t.SourceID = id

	return id, nil
}

// DeleteAudioTrack removes trackID and reports whether it existed.
func (p *Project) DeleteAudioTrack(trackID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	before := len(p.tracks)
	p.tracks = slices.DeleteFunc(p.tracks, func(t *Track) bool { return t.ID == trackID })

	return len(p.tracks) != before
}

// Stop cancels any preview in flight.
func (p *Project) Stop() {
	if p.preview != nil {
		p.preview.Stop()
	}
}

func (p *Project) findTrack(id string) *Track {
	for _, t := range p.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (p *Project) findBus(id string) *Bus {
	for _, b := range p.buses {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Tracks returns copies of every track in order.
func (p *Project) Tracks() []*Track {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Track, len(p.tracks))
	for i, t := range p.tracks {
		out[i] = t.clone()
	}
	return out
}

func (p *Project) Track(id string) (*Track, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t := p.findTrack(id)
	if t == nil {
		return nil, false
	}
	return t.clone(), true
}

func (p *Project) updateTrack(id string, fn func(t *Track) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.findTrack(id)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}
	return fn(t)
}

func (p *Project) SetTrackVolume(id string, volume float32) error {
	if !validVolume(volume) {
		return fmt.Errorf("%w: volume %v", ErrInvalidParam, volume)
	}
	return p.updateTrack(id, func(t *Track) error { t.Volume = volume; return nil })
}

func (p *Project) SetTrackPan(id string, pan float32) error {
	if !validPan(pan) {
		return fmt.Errorf("%w: pan %v", ErrInvalidParam, pan)
	}
	return p.updateTrack(id, func(t *Track) error { t.Pan = pan; return nil })
}

func (p *Project) SetTrackMuted(id string, muted bool) error {
	return p.updateTrack(id, func(t *Track) error { t.Muted = muted; return nil })
}

func (p *Project) SetTrackName(id, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidParam)
	}
	return p.updateTrack(id, func(t *Track) error { t.Name = name; return nil })
}

// SetSend sets the amount trackID sends to busID, adding the send if new.
func (p *Project) SetSend(trackID, busID string, amount float32) error {
	if !validVolume(amount) {
		return fmt.Errorf("%w: send amount %v", ErrInvalidParam, amount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.findTrack(trackID)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}
	if p.findBus(busID) == nil {
		return fmt.Errorf("%w: %s", ErrBusNotFound, busID)
	}

	for i := range t.Sends {
		if t.Sends[i].BusID == busID {
			t.Sends[i].Amount = amount
			return nil
		}
	}
	t.Sends = append(t.Sends, Send{BusID: busID, Amount: amount})

	return nil
}
