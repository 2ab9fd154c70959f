// SPDX-License-Identifier: EPL-2.0

package audio

import "strings"

// Channel labels the speaker position an interleaved channel feeds.
type Channel uint8

const (
	ChannelUnlabeled Channel = iota
	ChannelFrontLeft
	ChannelFrontRight
	ChannelFrontCenter
	ChannelLFE
	ChannelRearLeft
	ChannelRearRight
	ChannelSideLeft
	ChannelSideRight
)

var channelNames = [...]string{"?", "FL", "FR", "FC", "LFE", "RL", "RR", "SL", "SR"}

func (c Channel) String() string {
	if int(c) < len(channelNames) {
		return channelNames[c]
	}
	return "?"
}

// Layout lists the label of every channel in stream order.
type Layout []Channel

func (l Layout) String() string {
	names := make([]string, len(l))
	for i, c := range l {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}

var (
	LayoutMono   = Layout{ChannelFrontLeft}
	LayoutStereo = Layout{ChannelFrontLeft, ChannelFrontRight}
)

// canonical WAVE (and SMPTE) speaker order
var waveOrder = Layout{
	ChannelFrontLeft, ChannelFrontRight, ChannelFrontCenter, ChannelLFE,
	ChannelRearLeft, ChannelRearRight, ChannelSideLeft, ChannelSideRight,
}

// DefaultLayout returns the canonical WAVE layout for a channel count.
// Channels past the eighth are unlabeled.
func DefaultLayout(channels int) Layout {
	l := make(Layout, channels)
	switch channels {
	case 0:
	case 4:
		copy(l, Layout{ChannelFrontLeft, ChannelFrontRight, ChannelRearLeft, ChannelRearRight})
	case 5:
		copy(l, Layout{ChannelFrontLeft, ChannelFrontRight, ChannelFrontCenter, ChannelRearLeft, ChannelRearRight})
	case 7:
		// back center has no label of its own
		copy(l, Layout{ChannelFrontLeft, ChannelFrontRight, ChannelFrontCenter, ChannelLFE,
			ChannelUnlabeled, ChannelSideLeft, ChannelSideRight})
	default:
		copy(l, waveOrder)
	}

	return l
}
