// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"github.com/ik5/dawcore/audio"
	"github.com/ik5/dawcore/formats/aiff"
	"github.com/ik5/dawcore/formats/mp3"
	"github.com/ik5/dawcore/formats/vorbis"
	"github.com/ik5/dawcore/formats/wav"
)

// DefaultRegistry returns a registry holding every bundled decoder.
// MP3 is registered last because its frame-sync sniff is the loosest.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, "wave")
	reg.Register("aiff", aiff.Decoder{}, "aif", "aifc")
	reg.Register("ogg", vorbis.Decoder{}, "oga", "vorbis")
	reg.Register("mp3", mp3.Decoder{})

	return reg
}
