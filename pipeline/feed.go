// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"runtime"

	"github.com/ik5/dawcore/ringbuf"
)

// Feed pushes block into p once the ring has room for all of it (or for a
// full ring when block is larger). It spins with runtime.Gosched and must
// never run on the device callback. canceled is polled while waiting; Feed
// returns the number of samples written and false when it was canceled.
func Feed(p *ringbuf.Producer, block []float32, canceled func() bool) (int, bool) {
	lowWater := min(len(block), p.Capacity())
	for p.Vacant() < lowWater {
		if canceled != nil && canceled() {
			return 0, false
		}
		runtime.Gosched()
	}

	n := p.PushAll(block, canceled)

	return n, n == len(block)
}

// Run streams s into p until the source ends or canceled reports true.
// It reports whether the source played to its end.
func Run(s *Stream, p *ringbuf.Producer, canceled func() bool) (bool, error) {
	for {
		if canceled != nil && canceled() {
			return false, nil
		}

		block, err := s.Next()
		if err != nil {
			if isEOF(err) {
				return true, nil
			}
			return false, err
		}

		if _, ok := Feed(p, block, canceled); !ok {
			return false, nil
		}
	}
}
