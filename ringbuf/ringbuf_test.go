// SPDX-License-Identifier: EPL-2.0

package ringbuf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertInvariant(t *testing.T, p *Producer, c *Consumer) {
	t.Helper()

	assert.Equal(t, p.Capacity(), p.Vacant()+p.Occupied())
	assert.Equal(t, c.Capacity(), c.Vacant()+c.Occupied())
}

func TestNew(t *testing.T) {
	t.Parallel()

	p, c := New(8)
	require.NotNil(t, p)
	require.NotNil(t, c)

	assert.Equal(t, 8, p.Capacity())
	assert.Equal(t, 8, c.Capacity())
	assert.Equal(t, 8, p.Vacant())
	assert.Equal(t, 0, c.Occupied())
}

func TestNew_InvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New(0) })
}

func TestPushPop(t *testing.T) {
	t.Parallel()

	p, c := New(8)

	n := p.Push([]float32{1, 2, 3})
	assert.Equal(t, 3, n)
	assertInvariant(t, p, c)
	assert.Equal(t, 3, c.Occupied())

	dst := make([]float32, 8)
	n = c.Pop(dst)
	require.Equal(t, 3, n)
	assert.Equal(t, []float32{1, 2, 3}, dst[:n])
	assertInvariant(t, p, c)
}

func TestPush_TruncatesWhenFull(t *testing.T) {
	t.Parallel()

	p, c := New(4)

	n := p.Push([]float32{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, p.Vacant())
	assert.Equal(t, 0, p.Push([]float32{7}))
	assertInvariant(t, p, c)

	dst := make([]float32, 4)
	assert.Equal(t, 4, c.Pop(dst))
	assert.Equal(t, []float32{1, 2, 3, 4}, dst)
}

func TestPop_EmptyNeverBlocks(t *testing.T) {
	t.Parallel()

	p, c := New(4)

	dst := []float32{9, 9}
	assert.Equal(t, 0, c.Pop(dst))
	assert.Equal(t, []float32{9, 9}, dst, "pop on empty must not touch dst")
	assertInvariant(t, p, c)
}

func TestWrapAround(t *testing.T) {
	t.Parallel()

	p, c := New(5)
	dst := make([]float32, 5)

	var next float32
	var expect float32
	for round := range 50 {
		batch := make([]float32, round%4+1)
		for i := range batch {
			batch[i] = next
			next++
		}
		require.Equal(t, len(batch), p.Push(batch))
		assertInvariant(t, p, c)

		n := c.Pop(dst)
		require.Equal(t, len(batch), n)
		for i := range n {
			assert.Equal(t, expect, dst[i])
			expect++
		}
		assertInvariant(t, p, c)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	p, c := New(8)

	p.Push([]float32{1, 2, 3})
	p.Discard()
	p.Push([]float32{7, 8})

	dst := make([]float32, 8)
	n := c.Pop(dst)
	require.Equal(t, 2, n)
	assert.Equal(t, []float32{7, 8}, dst[:n])
	assertInvariant(t, p, c)

	// an old mark below the read position is ignored
	p.Push([]float32{4})
	n = c.Pop(dst)
	require.Equal(t, 1, n)
	assert.Equal(t, float32(4), dst[0])
}

func TestPushAll_Canceled(t *testing.T) {
	t.Parallel()

	p, c := New(2)

	calls := 0
	n := p.PushAll([]float32{1, 2, 3, 4}, func() bool {
		calls++
		return true
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, calls)
	assertInvariant(t, p, c)
}

func TestPushAll_ConcurrentConsumer(t *testing.T) {
	t.Parallel()

	const total = 10000
	p, c := New(64)

	src := make([]float32, total)
	for i := range src {
		src[i] = float32(i)
	}

	var wg sync.WaitGroup
	got := make([]float32, 0, total)

	wg.Add(1)
	go func() {
		defer wg.Done()
		dst := make([]float32, 16)
		for len(got) < total {
			n := c.Pop(dst)
			got = append(got, dst[:n]...)
		}
	}()

	assert.Equal(t, total, p.PushAll(src, nil))
	wg.Wait()

	assert.Equal(t, src, got)
	assertInvariant(t, p, c)
}

// TestPop_ZeroAllocs guards the real-time callback path
func TestPop_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	p, c := New(1024)
	src := make([]float32, 512)
	dst := make([]float32, 512)

	allocs := testing.AllocsPerRun(100, func() {
		p.Push(src)
		c.Pop(dst)
	})

	if allocs > 0 {
		t.Errorf("push/pop allocated %v times, want 0", allocs)
	}
}

func BenchmarkPushPop(b *testing.B) {
	p, c := New(4096)
	src := make([]float32, 1024)
	dst := make([]float32, 1024)

	b.ReportAllocs()

	for range b.N {
		p.Push(src)
		c.Pop(dst)
	}
}
