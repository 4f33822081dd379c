package sequencer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"roombooking/services/loop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSequencer() *Sequencer {
	return New(loop.New(), zap.NewNop())
}

func TestOnlyLatestResponseApplies(t *testing.T) {
	s := newTestSequencer()

	release := make([]chan struct{}, 3)
	started := make(chan struct{}, 3)
	for i := range release {
		release[i] = make(chan struct{})
	}

	var mu sync.Mutex
	var applied []int
	results := make([]bool, 3)
	var wg sync.WaitGroup

	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Run(context.Background(), s, Call[int]{
				Channel: "detail",
				Start:   func() { started <- struct{}{} },
				Fetch: func(ctx context.Context) (int, error) {
					// ignore ctx so every response actually arrives
					<-release[i]
					return i + 1, nil
				},
				Apply: func(v int, err error) {
					mu.Lock()
					applied = append(applied, v)
					mu.Unlock()
				},
			})
		}()
		<-started
	}

	assert.True(t, s.Busy())
	assert.Equal(t, Token(3), s.Latest("detail"))

	close(release[2])
	require.Eventually(t, func() bool { return !s.Pending("detail") }, time.Second, time.Millisecond)
	close(release[0])
	close(release[1])
	wg.Wait()

	assert.Equal(t, []int{3}, applied)
	assert.Equal(t, []bool{false, false, true}, results)
	assert.False(t, s.Busy())
}

func TestSupersededRequestContextIsCancelled(t *testing.T) {
	s := newTestSequencer()
	started := make(chan struct{})
	var firstErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		Run(context.Background(), s, Call[int]{
			Channel: "summary",
			Start:   func() { close(started) },
			Fetch: func(ctx context.Context) (int, error) {
				<-ctx.Done()
				firstErr = ctx.Err()
				return 0, ctx.Err()
			},
			Apply: func(int, error) { t.Error("superseded request applied") },
		})
	}()
	<-started

	ok := Run(context.Background(), s, Call[int]{
		Channel: "summary",
		Fetch:   func(ctx context.Context) (int, error) { return 2, nil },
	})
	<-done

	assert.True(t, ok)
	assert.ErrorIs(t, firstErr, context.Canceled)
}

func TestCancelledFetchIsSilent(t *testing.T) {
	s := newTestSequencer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := Run(ctx, s, Call[int]{
		Channel: "detail",
		Fetch:   func(ctx context.Context) (int, error) { return 0, ctx.Err() },
		Apply:   func(int, error) { t.Error("cancelled request applied") },
	})
	assert.False(t, ok)
	assert.False(t, s.Busy())
}

func TestApplyReceivesFetchError(t *testing.T) {
	s := newTestSequencer()
	boom := errors.New("boom")
	var got error

	ok := Run(context.Background(), s, Call[string]{
		Channel: "detail",
		Fetch:   func(context.Context) (string, error) { return "", boom },
		Apply:   func(_ string, err error) { got = err },
	})
	assert.True(t, ok)
	assert.ErrorIs(t, got, boom)
}

func TestChannelsAreIndependent(t *testing.T) {
	s := newTestSequencer()
	started := make(chan struct{})
	release := make(chan struct{})
	var summaryApplied int32
	done := make(chan struct{})

	go func() {
		defer close(done)
		Run(context.Background(), s, Call[int]{
			Channel: "summary",
			Start:   func() { close(started) },
			Fetch: func(context.Context) (int, error) {
				<-release
				return 1, nil
			},
			Apply: func(int, error) { atomic.AddInt32(&summaryApplied, 1) },
		})
	}()
	<-started

	assert.True(t, Run(context.Background(), s, Call[int]{
		Channel: "detail",
		Fetch:   func(context.Context) (int, error) { return 2, nil },
	}))
	assert.True(t, s.Pending("summary"))
	assert.False(t, s.Pending("detail"))

	close(release)
	<-done
	assert.Equal(t, int32(1), atomic.LoadInt32(&summaryApplied))
}

func TestCancelDropsOutstanding(t *testing.T) {
	s := newTestSequencer()
	started := make(chan struct{})
	done := make(chan bool)

	go func() {
		done <- Run(context.Background(), s, Call[int]{
			Channel: "detail",
			Start:   func() { close(started) },
			Fetch: func(ctx context.Context) (int, error) {
				<-ctx.Done()
				return 0, nil
			},
			Apply: func(int, error) { t.Error("cancelled channel applied") },
		})
	}()
	<-started

	s.CancelAll()
	assert.False(t, <-done)
	assert.False(t, s.Busy())
}

func TestDebouncerRunsLastTrigger(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls int32
	var last int32

	for i := 1; i <= 5; i++ {
		i := int32(i)
		d.Trigger(func() {
			atomic.AddInt32(&calls, 1)
			atomic.StoreInt32(&last, i)
		})
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(5), atomic.LoadInt32(&last))
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
