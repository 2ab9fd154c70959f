// SPDX-License-Identifier: EPL-2.0

package audio

const (
	centerGain   = 0.7071
	surroundGain = 0.7071
	lfeGain      = 0.5
)

// DownmixMode is the rule a ChannelMap applies to every frame.
type DownmixMode uint8

const (
	// DownmixPassthrough copies front left/right unchanged.
	DownmixPassthrough DownmixMode = iota
	// DownmixDuplicate copies the only labeled channel to both outputs.
	DownmixDuplicate
	// DownmixRaw uses raw channel 0 as left and channel 1 (or 0) as right.
	DownmixRaw
	// DownmixWeighted folds every labeled channel into stereo.
	DownmixWeighted
)

// ChannelMap resolves a Layout into interleaved channel indexes, -1 when a
// label is absent.
type ChannelMap struct {
	Mode DownmixMode

	fl, fr, fc, lfe, rl, rr, sl, sr int
	right                           int // raw mode right index
}

// NewChannelMap builds the index map for layout.
func NewChannelMap(layout Layout) ChannelMap {
	m := ChannelMap{fl: -1, fr: -1, fc: -1, lfe: -1, rl: -1, rr: -1, sl: -1, sr: -1}

	labeled := 0
	for i, c := range layout {
		var slot *int
		switch c {
		case ChannelFrontLeft:
			slot = &m.fl
		case ChannelFrontRight:
			slot = &m.fr
		case ChannelFrontCenter:
			slot = &m.fc
		case ChannelLFE:
			slot = &m.lfe
		case ChannelRearLeft:
			slot = &m.rl
		case ChannelRearRight:
			slot = &m.rr
		case ChannelSideLeft:
			slot = &m.sl
		case ChannelSideRight:
			slot = &m.sr
		default:
			continue
		}
		// first occurrence of a label wins
		if *slot < 0 {
			*slot = i
			labeled++
		}
	}

	switch {
	case labeled == 0:
		m.Mode = DownmixRaw
		m.right = 0
		if len(layout) > 1 {
			m.right = 1
		}
	case labeled == 2 && m.fl >= 0 && m.fr >= 0:
		m.Mode = DownmixPassthrough
	case labeled == 1 && m.fl >= 0:
		m.Mode = DownmixDuplicate
	default:
		m.Mode = DownmixWeighted
	}

	return m
}

func at(frame []float32, idx int) float32 {
	if idx < 0 {
		return 0
	}
	return frame[idx]
}

// Downmix folds one interleaved frame into a stereo pair. It is pure.
func (m ChannelMap) Downmix(frame []float32) (left, right float32) {
	switch m.Mode {
	case DownmixPassthrough:
		return frame[m.fl], frame[m.fr]
	case DownmixDuplicate:
		return frame[m.fl], frame[m.fl]
	case DownmixRaw:
		if len(frame) == 0 {
			return 0, 0
		}
		return frame[0], frame[m.right]
	}

	shared := centerGain*at(frame, m.fc) + lfeGain*at(frame, m.lfe)
	left = at(frame, m.fl) + shared + surroundGain*(at(frame, m.sl)+at(frame, m.rl))
	right = at(frame, m.fr) + shared + surroundGain*(at(frame, m.sr)+at(frame, m.rr))

	return left, right
}
