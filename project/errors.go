// SPDX-License-Identifier: EPL-2.0

package project

import "errors"

var (
	// ErrNoSource is returned when a source path is required but empty
	ErrNoSource = errors.New("no source path given")

	ErrTrackNotFound = errors.New("track not found")

	ErrBusNotFound = errors.New("bus not found")

	// ErrInvalidParam indicates a value outside its allowed range
	ErrInvalidParam = errors.New("invalid parameter")
)
