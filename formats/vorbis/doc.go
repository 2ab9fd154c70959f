// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams into audio.Source using
// github.com/jfreymuth/oggvorbis.
//
// Sources expose the Vorbis channel order through Layout so that surround
// material is folded to stereo with the right weights.
package vorbis
