// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Pipeline error taxonomy. Concrete errors wrap one of these so callers can
// classify with errors.Is.
var (
	// ErrFormat reports an unrecognized container.
	ErrFormat = errors.New("unrecognized audio format")
	// ErrTrack reports a container without a usable audio track.
	ErrTrack = errors.New("no audio track found")
	// ErrCodec reports unsupported codec parameters.
	ErrCodec = errors.New("unsupported codec")
	// ErrIO reports an open or read failure.
	ErrIO = errors.New("audio i/o failure")
	// ErrResampler reports an invalid ratio or a processing failure.
	ErrResampler = errors.New("resampler failure")
	// ErrLock reports an internal synchronization failure.
	ErrLock = errors.New("internal lock failure")

	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
)
