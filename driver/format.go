// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"fmt"
	"strings"
)

// SampleFormat is the device sample encoding.
type SampleFormat uint8

const (
	FormatFloat32 SampleFormat = iota
	FormatInt16
)

// BytesPerSample returns the encoded size of one sample.
func (f SampleFormat) BytesPerSample() int {
	if f == FormatInt16 {
		return 2
	}
	return 4
}

func (f SampleFormat) String() string {
	if f == FormatInt16 {
		return "s16"
	}
	return "f32"
}

// ParseSampleFormat accepts "f32" or "s16".
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(s) {
	case "f32", "float32":
		return FormatFloat32, nil
	case "s16", "int16":
		return FormatInt16, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrSampleFormat, s)
}
