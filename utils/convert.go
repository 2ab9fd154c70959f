// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"math"
)

// Float32ToInt16 clamps x to [-1, 1] and scales it to a signed 16-bit sample.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Int16ToFloat32 maps a signed 16-bit sample into [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// PutFloat32LE encodes src as little-endian IEEE-754 floats into dst.
// dst must hold at least 4*len(src) bytes. Returns bytes written.
func PutFloat32LE(dst []byte, src []float32) int {
	for i, s := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(s))
	}

	return 4 * len(src)
}

// PutInt16LE clamps and encodes src as little-endian signed 16-bit samples.
// dst must hold at least 2*len(src) bytes. Returns bytes written.
func PutInt16LE(dst []byte, src []float32) int {
	for i, s := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(Float32ToInt16(s)))
	}

	return 2 * len(src)
}
