// SPDX-License-Identifier: EPL-2.0

// Package dawcore is the real-time audio backend of a desktop audio
// workstation.
//
// An Engine owns one output stream on the default device and two lock-free
// rings feeding it: the engine ring, reserved for timeline rendering, and
// the preview ring, filled by the preview controller. Files are decoded by
// the pipeline package, folded to stereo, resampled to the engine rate and
// cached as shared assets in the asset pool. The project package keeps the
// track list on top of the pool.
//
// # Supported Formats
//
//   - WAV (PCM 8/16/24/32-bit) via formats/wav
//   - AIFF and AIFF-C via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//
// Files are matched by extension first and by content when the extension
// lies or is missing.
//
// # Quick Start
//
//	cfg, _ := config.Load("dawcore.yaml")
//	eng, err := dawcore.New(cfg)
//	if err != nil {
//		// no usable output device
//	}
//	defer eng.Close()
//
//	_, events := eng.Notifications().Subscribe(16)
//	eng.PreviewPlay("/samples/kick.wav")
//
//	track, err := eng.Project().AddAudioTrack(ctx, "/samples/loop.ogg")
//
// # Threads
//
// The device callback is the only consumer of both rings and never blocks
// or allocates. At most one preview worker produces into the preview ring.
// Decoding for tracks runs on its own goroutine and callers may abandon it
// through their context.
package dawcore
