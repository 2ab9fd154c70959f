// SPDX-License-Identifier: EPL-2.0

package project

import (
	"fmt"

	"github.com/google/uuid"
)

// AddBus creates a bus named name.
func (p *Project) AddBus(name string) *Bus {
	p.mu.Lock()
	defer p.mu.Unlock()

	if name == "" {
		name = fmt.Sprintf("Bus %d", len(p.buses)+1)
	}
	b := &Bus{ID: uuid.NewString(), Name: name, Volume: 1}
	p.buses = append(p.buses, b)

	c := *b
	return &c
}

func (p *Project) Buses() []Bus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Bus, len(p.buses))
	for i, b := range p.buses {
		out[i] = *b
	}
	return out
}

func (p *Project) Master() Master {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.master
}

func (p *Project) SetMasterVolume(volume float32) error {
	if !validVolume(volume) {
		return fmt.Errorf("%w: volume %v", ErrInvalidParam, volume)
	}

	p.mu.Lock()
	p.master.Volume = volume
	p.mu.Unlock()

	return nil
}

func (p *Project) SetMasterPan(pan float32) error {
	if !validPan(pan) {
		return fmt.Errorf("%w: pan %v", ErrInvalidParam, pan)
	}

	p.mu.Lock()
	p.master.Pan = pan
	p.mu.Unlock()

	return nil
}

func (p *Project) SetMasterMuted(muted bool) {
	p.mu.Lock()
	p.master.Muted = muted
	p.mu.Unlock()
}

func (p *Project) Tempo() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.tempo
}

// SetTempo sets the tempo in beats per minute.
func (p *Project) SetTempo(bpm float64) error {
	if !(bpm > 0) {
		return fmt.Errorf("%w: tempo %v", ErrInvalidParam, bpm)
	}

	p.mu.Lock()
	p.tempo = bpm
	p.mu.Unlock()

	return nil
}

// PPQ is the number of ticks per quarter note.
func (p *Project) PPQ() uint16 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.ppq
}

func (p *Project) SetPPQ(ppq uint16) error {
	if ppq == 0 {
		return fmt.Errorf("%w: ppq 0", ErrInvalidParam)
	}

	p.mu.Lock()
	p.ppq = ppq
	p.mu.Unlock()

	return nil
}

func (p *Project) TimeSignature() TimeSignature {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.timeSignature
}

func (p *Project) SetTimeSignature(ts TimeSignature) error {
	if !ts.Valid() {
		return fmt.Errorf("%w: time signature %s", ErrInvalidParam, ts)
	}

	p.mu.Lock()
	p.timeSignature = ts
	p.mu.Unlock()

	return nil
}
