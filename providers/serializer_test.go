package providers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// P4: concurrent submission of N units never lets two units run at once -
// each unit's body executes under exclusive occupancy of the single slot.
func TestSerializerTotalOrder(t *testing.T) {
	s := newSerializer()

	var inFlight atomic.Int32
	var maxInFlight atomic.Int32
	var completed atomic.Int32
	var wg sync.WaitGroup

	const n = 50
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.submit(context.Background(), func() error {
				// Simulate work with a suspension point; no other unit
				// should be able to run concurrently with this one.
				cur := inFlight.Add(1)
				for {
					prev := maxInFlight.Load()
					if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				completed.Add(1)
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, n, completed.Load())
	require.EqualValues(t, 1, maxInFlight.Load(), "two units ran concurrently")
}

// P4: units submitted one after another from a single caller run, and
// complete, in exactly that submission order.
func TestSerializerPreservesSubmissionOrder(t *testing.T) {
	s := newSerializer()

	var order []int
	const n = 50
	for i := 0; i < n; i++ {
		i := i
		err := s.submit(context.Background(), func() error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}

	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	require.Equal(t, want, order)
}

func TestSerializerPropagatesError(t *testing.T) {
	s := newSerializer()
	sentinel := context.Canceled

	err := s.submit(context.Background(), func() error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// A failed unit does not wedge the queue; subsequent units still run.
	err = s.submit(context.Background(), func() error {
		return nil
	})
	require.NoError(t, err)
}

func TestSerializerRespectsContextCancellation(t *testing.T) {
	s := newSerializer()

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.submit(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// This unit is already admitted (the queue is unbounded) by the time
	// its context expires; submit gives up waiting on it, but the unit
	// itself still runs to completion once its turn comes.
	ran := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.submit(ctx, func() error {
		close(ran)
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("abandoned unit never ran")
	}
}
