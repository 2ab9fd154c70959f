// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF and AIFF-C files into audio.Source using
// github.com/go-audio/aiff.
//
// Signed integer PCM at 8, 16, 24 and 32 bits is supported. Mono and stereo
// files carry front left/right labels; other channel counts are reported
// unlabeled and are folded to stereo from their first two channels.
//
//	src, err := aiff.Decoder{}.Decode(file)
package aiff
