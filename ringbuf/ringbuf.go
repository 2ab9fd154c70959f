// SPDX-License-Identifier: EPL-2.0

// Package ringbuf implements a fixed-capacity, lock-free, single-producer
// single-consumer queue of float32 samples.
//
// A buffer is created and split exactly once by New into an owning
// Producer and an owning Consumer. The Producer belongs to the one
// goroutine that writes audio (a decode worker), the Consumer belongs to the
// real-time device callback. Neither half may be shared with another
// goroutine.
//
// Positions are two monotonically increasing counters. The producer stores
// the write position after copying data, the consumer loads it before
// copying, so the consumer always observes fully written samples.
package ringbuf

import (
	"runtime"
	"sync/atomic"
)

type ring struct {
	writePos atomic.Uint64
	_pad1    [56]byte
	readPos  atomic.Uint64
	_pad2    [56]byte

	// discardPos is published by the producer; the consumer skips every
	// sample below it.
	discardPos atomic.Uint64

	buf []float32
}

// Producer is the write half of a ring buffer.
type Producer struct {
	r *ring
}

// Consumer is the read half of a ring buffer.
type Consumer struct {
	r *ring
}

// New allocates a ring buffer holding capacity samples and splits it into
// its two halves. capacity must be positive.
func New(capacity int) (*Producer, *Consumer) {
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}

	r := &ring{buf: make([]float32, capacity)}

	return &Producer{r: r}, &Consumer{r: r}
}

func (r *ring) lens() (occupied, vacant int) {
	// read position first: writePos only grows, so w >= rd holds
	rd := r.readPos.Load()
	w := r.writePos.Load()
	occupied = min(int(w-rd), len(r.buf))

	return occupied, len(r.buf) - occupied
}

// Capacity returns the fixed number of samples the buffer holds.
func (p *Producer) Capacity() int { return len(p.r.buf) }

// Occupied returns the number of samples queued.
func (p *Producer) Occupied() int {
	o, _ := p.r.lens()
	return o
}

// Vacant returns the number of samples that can be pushed without
// truncation.
func (p *Producer) Vacant() int {
	_, v := p.r.lens()
	return v
}

// Push copies as many samples from src as fit and returns that count.
// It never blocks; the remainder is truncated.
func (p *Producer) Push(src []float32) int {
	r := p.r
	w := r.writePos.Load()
	free := uint64(len(r.buf)) - (w - r.readPos.Load())

	n := uint64(len(src))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	size := uint64(len(r.buf))
	pos := w % size
	first := size - pos
	if first >= n {
		copy(r.buf[pos:pos+n], src[:n])
	} else {
		copy(r.buf[pos:], src[:first])
		copy(r.buf[:n-first], src[first:n])
	}

	r.writePos.Store(w + n)

	return int(n)
}

// PushAll pushes every sample of src, spinning while the buffer is full.
// canceled is polled between attempts; when it reports true PushAll stops
// and returns the number of samples written so far. A nil canceled never
// cancels.
func (p *Producer) PushAll(src []float32, canceled func() bool) int {
	written := 0
	for written < len(src) {
		n := p.Push(src[written:])
		written += n
		if written == len(src) {
			break
		}
		if canceled != nil && canceled() {
			break
		}
		if n == 0 {
			runtime.Gosched()
		}
	}

	return written
}

// Discard marks every sample queued so far as stale. The consumer drops
// them on its next Pop. The producer may keep pushing immediately.
func (p *Producer) Discard() {
	p.r.discardPos.Store(p.r.writePos.Load())
}

// Capacity returns the fixed number of samples the buffer holds.
func (c *Consumer) Capacity() int { return len(c.r.buf) }

// Occupied returns the number of samples queued.
func (c *Consumer) Occupied() int {
	o, _ := c.r.lens()
	return o
}

// Vacant returns the number of free sample slots.
func (c *Consumer) Vacant() int {
	_, v := c.r.lens()
	return v
}

// Pop copies up to len(dst) queued samples into dst and returns the count.
// It never blocks and never allocates.
func (c *Consumer) Pop(dst []float32) int {
	r := c.r
	rd := r.readPos.Load()
	if d := r.discardPos.Load(); d > rd {
		rd = d
		r.readPos.Store(rd)
	}

	available := r.writePos.Load() - rd
	n := uint64(len(dst))
	if n > available {
		n = available
	}
	if n == 0 {
		return 0
	}

	size := uint64(len(r.buf))
	pos := rd % size
	first := size - pos
	if first >= n {
		copy(dst[:n], r.buf[pos:pos+n])
	} else {
		copy(dst[:first], r.buf[pos:])
		copy(dst[first:n], r.buf[:n-first])
	}

	r.readPos.Store(rd + n)

	return int(n)
}
