// SPDX-License-Identifier: EPL-2.0

// Package assetpool caches decoded audio files as shared, immutable assets.
//
// A Pool maps asset ids to assets and source paths to ids. Lookups take a
// read lock; Add and Remove update both maps under one write lock, so a
// path never resolves to a missing asset.
package assetpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ik5/dawcore/internal/logging"
	"github.com/ik5/dawcore/internal/metrics"
	"github.com/ik5/dawcore/pipeline"
)

// ID identifies an asset for the lifetime of a pool.
type ID string

// Metadata describes where an asset came from.
type Metadata struct {
	FilePath           string
	DisplayName        string
	OriginalChannels   int
	OriginalSampleRate int
}

// Asset pairs shared PCM with a metadata snapshot that can be replaced
// without blocking readers.
type Asset struct {
	id   ID
	pcm  *PCM
	meta atomic.Pointer[Metadata]
}

func (a *Asset) ID() ID             { return a.id }
func (a *Asset) PCM() *PCM          { return a.pcm }
func (a *Asset) Metadata() Metadata { return *a.meta.Load() }

// ErrDecodePanic wraps a panic raised by a DecodeFunc.
var ErrDecodePanic = errors.New("decoder panicked")

// DecodeFunc turns a path into engine-format audio.
type DecodeFunc func(path string) (*pipeline.Decoded, error)

type Pool struct {
	assets map[ID]*Asset
	paths  map[string]ID
	mtx    sync.RWMutex

	group  singleflight.Group
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Pool {
	return &Pool{
		assets: make(map[ID]*Asset),
		paths:  make(map[string]ID),
		logger: logging.Component(logger, "assetpool"),
	}
}

// Add stores decoded audio and returns its id. A path already in the pool
// returns the existing id and the new data is discarded.
func (p *Pool) Add(d *pipeline.Decoded) ID {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if id, ok := p.paths[d.FilePath]; ok {
		return id
	}

	a := &Asset{
		id: ID(uuid.NewString()),
		pcm: &PCM{
			data:       d.Data,
			channels:   d.Channels,
			sampleRate: d.SampleRate,
		},
	}
	a.meta.Store(&Metadata{
		FilePath:           d.FilePath,
		DisplayName:        d.FileName,
		OriginalChannels:   d.OriginalChannels,
		OriginalSampleRate: d.OriginalSampleRate,
	})

	p.assets[a.id] = a
	p.paths[d.FilePath] = a.id
	metrics.AssetPoolAssets.Inc()

	p.logger.Debug().Str("id", string(a.id)).Str("path", d.FilePath).Int("frames", a.pcm.Frames()).Msg("asset added")

	return a.id
}

func (p *Pool) Get(id ID) (*Asset, bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	a, ok := p.assets[id]
	return a, ok
}

func (p *Pool) GetPCMByID(id ID) (*PCM, bool) {
	a, ok := p.Get(id)
	if !ok {
		return nil, false
	}
	return a.pcm, true
}

func (p *Pool) GetIDByPath(path string) (ID, bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	id, ok := p.paths[path]
	return id, ok
}

func (p *Pool) HasPath(path string) bool {
	_, ok := p.GetIDByPath(path)
	return ok
}

func (p *Pool) Metadata(id ID) (Metadata, bool) {
	a, ok := p.Get(id)
	if !ok {
		return Metadata{}, false
	}
	return a.Metadata(), true
}

func (p *Pool) Len() int {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	return len(p.assets)
}

// Remove forgets id and its path. PCM already handed out stays valid.
// Unknown ids are ignored.
func (p *Pool) Remove(id ID) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	a, ok := p.assets[id]
	if !ok {
		return
	}

	delete(p.assets, id)
	delete(p.paths, a.Metadata().FilePath)
	metrics.AssetPoolAssets.Dec()
}

// Rename swaps in a metadata snapshot with a new display name.
func (p *Pool) Rename(id ID, displayName string) bool {
	a, ok := p.Get(id)
	if !ok {
		return false
	}

	for {
		old := a.meta.Load()
		next := *old
		next.DisplayName = displayName
		if a.meta.CompareAndSwap(old, &next) {
			return true
		}
	}
}

// LoadOrDecode returns the id for path, decoding and adding it when it is
// not pooled yet. Concurrent calls for the same path share one decode. The
// decode runs on its own goroutine; when ctx ends first LoadOrDecode
// returns ctx.Err() and the decode still completes into the pool.
func (p *Pool) LoadOrDecode(ctx context.Context, path string, decode DecodeFunc) (ID, error) {
	if id, ok := p.GetIDByPath(path); ok {
		return id, nil
	}

	ch := p.group.DoChan(path, func() (any, error) {
		if id, ok := p.GetIDByPath(path); ok {
			return id, nil
		}

		d, err := p.safeDecode(path, decode)
		if err != nil {
			return ID(""), err
		}

		return p.Add(d), nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("loading %s: %w", path, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(ID), nil
	}
}

// safeDecode turns a decoder panic into an error. singleflight would
// otherwise re-panic it on a goroutine nobody can recover.
func (p *Pool) safeDecode(path string, decode DecodeFunc) (d *pipeline.Decoded, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("path", path).Interface("panic", r).Msg("decoder panicked")
			d, err = nil, fmt.Errorf("%w: %s: %v", ErrDecodePanic, path, r)
		}
	}()

	return decode(path)
}
