// SPDX-License-Identifier: EPL-2.0

package preview

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/dawcore/internal/audiotest"
	"github.com/ik5/dawcore/notify"
	"github.com/ik5/dawcore/pipeline"
	"github.com/ik5/dawcore/ringbuf"
)

func newController(t *testing.T, capacity int) (*Controller, *ringbuf.Consumer, *notify.Recorder) {
	t.Helper()

	prod, cons := ringbuf.New(capacity)
	rec := &notify.Recorder{}
	c := New(prod, rec, Options{
		Pipeline:     pipeline.DefaultOptions(),
		PollInterval: time.Millisecond,
		Logger:       zerolog.Nop(),
	})

	return c, cons, rec
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

func TestPlay_MissingFileNotifiesOnce(t *testing.T) {
	t.Parallel()

	c, _, rec := newController(t, 1024)

	c.Play("missing.mp3")
	c.Wait()

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventError, events[0].Name)
	assert.Contains(t, events[0].Message, "missing.mp3")

	st := c.State()
	assert.False(t, st.Started)
	assert.False(t, st.Playing)
	assert.False(t, st.Queued)
	assert.Equal(t, "missing.mp3", st.Path)
}

func TestPlay_StreamsIntoRing(t *testing.T) {
	t.Parallel()

	c, cons, rec := newController(t, 512)
	path := audiotest.WriteWAVFile(t, "a.wav", 48000, 1, audiotest.ConstantSamples(48000, 1, 8192))

	c.Play(path)
	waitFor(t, c.Playing)
	waitFor(t, func() bool { return cons.Occupied() == cons.Capacity() })

	buf := make([]float32, 256)
	n := cons.Pop(buf)
	require.Equal(t, 256, n)
	for _, v := range buf {
		assert.InDelta(t, 0.25, v, 1e-4)
	}

	c.Stop()
	c.Wait()
	assert.False(t, c.Playing())
	assert.Empty(t, rec.Events())
}

func TestPlay_SecondPlayReplacesFirst(t *testing.T) {
	t.Parallel()

	c, cons, rec := newController(t, 1024)
	a := audiotest.WriteWAVFile(t, "a.wav", 48000, 1, audiotest.ConstantSamples(48000, 1, 8192))
	b := audiotest.WriteWAVFile(t, "b.wav", 48000, 1, audiotest.ConstantSamples(48000, 1, -16384))

	c.Play(a)
	waitFor(t, func() bool { return cons.Occupied() == cons.Capacity() })

	// a's worker is parked on a full ring; Play must cancel it first
	c.Play(b)
	assert.Equal(t, b, c.State().Path)
	waitFor(t, c.Playing)

	var got []float32
	buf := make([]float32, 128)
	waitFor(t, func() bool {
		n := cons.Pop(buf)
		got = append(got, buf[:n]...)
		return len(got) >= 2048
	})

	c.Stop()
	c.Wait()

	for i, v := range got {
		require.InDelta(t, -0.5, v, 1e-4, "sample %d still belongs to a.wav", i)
	}
	assert.Empty(t, rec.Events())
}

func TestPlay_ConcurrentCallersSingleWorker(t *testing.T) {
	t.Parallel()

	c, _, rec := newController(t, 256)

	// each worker stays inside open until it is told to stop, standing in
	// for a worker that owns the producer
	var live, peak, runs atomic.Int32
	errLeft := errors.New("left")
	c.open = func(string, pipeline.Options) (*pipeline.Stream, error) {
		n := live.Add(1)
		defer live.Add(-1)
		runs.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		for !c.stopped() {
			time.Sleep(100 * time.Microsecond)
		}
		return nil, errLeft
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Play("loop.wav")
		}()
	}
	wg.Wait()

	c.Stop()
	c.Wait()

	assert.Equal(t, int32(1), peak.Load(), "two workers were alive at once")
	assert.Equal(t, int32(8), runs.Load())
	assert.Len(t, rec.Events(), 8)

	st := c.State()
	assert.False(t, st.Started)
	assert.False(t, st.Playing)
	assert.False(t, st.Queued)
	assert.False(t, st.Canceled)
}

func TestPlay_FinishedPreviewDrainsBeforeExit(t *testing.T) {
	t.Parallel()

	c, cons, rec := newController(t, 4096)
	c.drainTimeout = time.Minute
	path := audiotest.WriteWAVFile(t, "short.wav", 48000, 1, audiotest.ConstantSamples(100, 1, 100))

	c.Play(path)
	waitFor(t, func() bool { return cons.Occupied() == 200 })
	assert.True(t, c.State().Started)

	cons.Pop(make([]float32, 200))
	c.Wait()
	assert.False(t, c.Playing())
	assert.Empty(t, rec.Events())
}

func TestPlay_UnconsumedTailGivesUp(t *testing.T) {
	t.Parallel()

	// no one pops, as with a device that stopped pulling
	c, cons, rec := newController(t, 4096)
	c.drainTimeout = 20 * time.Millisecond
	path := audiotest.WriteWAVFile(t, "short.wav", 48000, 1, audiotest.ConstantSamples(100, 1, 100))

	c.Play(path)
	waitFor(t, func() bool { return !c.State().Started })

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Message, ErrOutputStalled.Error())
	assert.Equal(t, 200, cons.Occupied())

	st := c.State()
	assert.False(t, st.Playing)
	assert.False(t, st.Queued)
	assert.False(t, st.Canceled)
}

func TestDrainTimeout_FollowsRingLength(t *testing.T) {
	t.Parallel()

	// a 96000-sample ring is one second of stereo at 48 kHz
	assert.Equal(t, time.Second, ringDuration(96000, pipeline.DefaultOptions()))
	assert.Equal(t, 2*time.Second, ringDuration(96000, pipeline.Options{SampleRate: 48000, Channels: 1}))

	prod, _ := ringbuf.New(96000)
	c := New(prod, &notify.Recorder{}, Options{Logger: zerolog.Nop()})
	assert.Equal(t, time.Second+drainSlack, c.drainTimeout)
}

func TestHalt_ReleasesParkedWorker(t *testing.T) {
	t.Parallel()

	c, cons, rec := newController(t, 512)
	path := audiotest.WriteWAVFile(t, "long.wav", 48000, 2, audiotest.ConstantSamples(48000, 2, 100))

	c.Play(path)
	waitFor(t, func() bool { return cons.Occupied() == cons.Capacity() })

	unplugged := errors.New("device unplugged")
	c.Halt(unplugged)
	c.Wait()

	assert.False(t, c.Playing())
	assert.Empty(t, rec.Events(), "the device owner reports the loss, not the worker")

	c.Play(path)
	assert.False(t, c.State().Started)
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Message, "device unplugged")
	assert.Contains(t, events[0].Message, "long.wav")
}

func TestWorker_FailureAfterStopClearsCanceled(t *testing.T) {
	t.Parallel()

	c, _, rec := newController(t, 64)
	release := make(chan struct{})
	c.open = func(string, pipeline.Options) (*pipeline.Stream, error) {
		<-release
		return nil, errors.New("gone")
	}

	c.Play("x.wav")
	c.Stop()
	assert.True(t, c.State().Canceled)
	close(release)
	c.Wait()

	assert.Len(t, rec.Events(), 1)
	st := c.State()
	assert.False(t, st.Started)
	assert.False(t, st.Playing)
	assert.False(t, st.Queued)
	assert.False(t, st.Canceled)
}

func TestWorker_PanicBecomesNotification(t *testing.T) {
	t.Parallel()

	c, _, rec := newController(t, 64)
	c.open = func(string, pipeline.Options) (*pipeline.Stream, error) {
		panic("decoder exploded")
	}

	c.Play("boom.wav")
	c.Wait()

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Message, "decoder exploded")
	assert.False(t, c.State().Started)
}

func TestWorker_OpenErrorResetsFlags(t *testing.T) {
	t.Parallel()

	c, _, rec := newController(t, 64)
	c.open = func(string, pipeline.Options) (*pipeline.Stream, error) {
		return nil, errors.New("no luck")
	}

	for range 3 {
		c.Play("x.wav")
		c.Wait()
	}

	assert.Len(t, rec.Events(), 3)
	st := c.State()
	assert.False(t, st.Started)
	assert.False(t, st.Playing)
	assert.False(t, st.Queued)
}
