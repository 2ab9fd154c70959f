// SPDX-License-Identifier: EPL-2.0

package driver

import "errors"

var (
	// ErrSampleFormat indicates an unknown device sample format
	ErrSampleFormat = errors.New("unsupported sample format")

	// ErrBackend indicates the output stream could not be opened
	ErrBackend = errors.New("audio backend unavailable")

	// ErrClosed is returned when starting a closed backend
	ErrClosed = errors.New("audio backend closed")
)
