// SPDX-License-Identifier: EPL-2.0

package project

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Snapshot is a point-in-time copy of the whole project.
type Snapshot struct {
	PPQ           uint16        `json:"ppq" yaml:"ppq"`
	Tempo         float64       `json:"tempo" yaml:"tempo"`
	TimeSignature TimeSignature `json:"timeSignature" yaml:"timeSignature"`
	Master        Master        `json:"master" yaml:"master"`
	Tracks        []Track       `json:"tracks" yaml:"tracks"`
	Buses         []Bus         `json:"buses" yaml:"buses"`
}

func (p *Project) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		PPQ:           p.ppq,
		Tempo:         p.tempo,
		TimeSignature: p.timeSignature,
		Master:        p.master,
		Tracks:        make([]Track, len(p.tracks)),
		Buses:         make([]Bus, len(p.buses)),
	}
	for i, t := range p.tracks {
		s.Tracks[i] = *t.clone()
	}
	for i, b := range p.buses {
		s.Buses[i] = *b
	}

	return s
}

func (s Snapshot) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func (s Snapshot) YAML() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// ParseSnapshot reads a snapshot written by JSON or YAML.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return s, nil
}
