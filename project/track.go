// SPDX-License-Identifier: EPL-2.0

package project

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/ik5/dawcore/assetpool"
)

const (
	MasterTrackName = "Master"

	DefaultPPQ   = 960
	DefaultTempo = 128.0
)

// Send routes part of a track's signal to a bus.
type Send struct {
	BusID  string  `json:"busId" yaml:"busId"`
	Amount float32 `json:"amount" yaml:"amount"`
}

// Track is an audio track. Values returned by Project are copies.
type Track struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Volume   float32      `json:"volume" yaml:"volume"`
	Pan      float32      `json:"pan" yaml:"pan"`
	Muted    bool         `json:"muted" yaml:"muted"`
	SourceID assetpool.ID `json:"sourceId,omitempty" yaml:"sourceId,omitempty"`
	Sends    []Send       `json:"sends" yaml:"sends"`
}

func newTrack(name string, source assetpool.ID) *Track {
	return &Track{
		ID:       uuid.NewString(),
		Name:     name,
		Volume:   1,
		SourceID: source,
		Sends:    []Send{},
	}
}

func defaultTrackName(n int) string { return fmt.Sprintf("Audio %d", n) }

func (t *Track) clone() *Track {
	c := *t
	c.Sends = slices.Clone(t.Sends)
	if c.Sends == nil {
		c.Sends = []Send{}
	}
	return &c
}

// Bus is a submix target for sends.
type Bus struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Volume float32 `json:"volume" yaml:"volume"`
	Pan    float32 `json:"pan" yaml:"pan"`
	Muted  bool    `json:"muted" yaml:"muted"`
}

// Master is the final output track.
type Master struct {
	Name   string  `json:"name" yaml:"name"`
	Volume float32 `json:"volume" yaml:"volume"`
	Pan    float32 `json:"pan" yaml:"pan"`
	Muted  bool    `json:"muted" yaml:"muted"`
}

func defaultMaster() Master {
	return Master{Name: MasterTrackName, Volume: 1}
}

type TimeSignature struct {
	Numerator   uint8 `json:"numerator" yaml:"numerator"`
	Denominator uint8 `json:"denominator" yaml:"denominator"`
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// Valid reports a non-zero numerator over a power-of-two denominator.
func (ts TimeSignature) Valid() bool {
	d := ts.Denominator
	return ts.Numerator > 0 && d > 0 && d <= 64 && d&(d-1) == 0
}

func validVolume(v float32) bool { return v >= 0 && v <= 1 }
func validPan(v float32) bool    { return v >= -1 && v <= 1 }
