package blockingqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zerrors "github.com/rdkcentral/zilker-sdk-sub009/pkg/common/errors"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  bool
	}{
		{"valid", 8, false},
		{"capacity one", 1, false},
		{"zero capacity", 0, true},
		{"negative capacity", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New[int](tt.capacity)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, zerrors.ErrInvalidConfiguration)
				assert.Nil(t, q)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.capacity, q.Cap())
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestFIFOOrder(t *testing.T) {
	q, err := New[int](16)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Push(i, time.Second))
	}
	assert.Equal(t, 10, q.Len())

	for i := 0; i < 10; i++ {
		item, err := q.Pop(time.Second)
		require.NoError(t, err)
		assert.Equal(t, i, item)
	}
	assert.Equal(t, 0, q.Len())
}

func TestTryPushFull(t *testing.T) {
	q, err := New[string](2)
	require.NoError(t, err)

	require.NoError(t, q.TryPush("a"))
	require.NoError(t, q.TryPush("b"))
	require.ErrorIs(t, q.TryPush("c"), zerrors.ErrCapacityExceeded)
}

func TestPopTimeout(t *testing.T) {
	q, err := New[int](4)
	require.NoError(t, err)

	start := time.Now()
	_, err = q.Pop(50 * time.Millisecond)
	require.ErrorIs(t, err, zerrors.ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPushTimeoutWhenFull(t *testing.T) {
	q, err := New[int](1)
	require.NoError(t, err)
	require.NoError(t, q.Push(1, 0))

	err = q.Push(2, 50*time.Millisecond)
	require.ErrorIs(t, err, zerrors.ErrTimeout)
}

func TestPushUnblocksOnPop(t *testing.T) {
	q, err := New[int](1)
	require.NoError(t, err)
	require.NoError(t, q.Push(1, 0))

	pushed := make(chan error, 1)
	go func() {
		pushed <- q.Push(2, time.Second)
	}()

	// Make room; the blocked pusher should complete.
	time.Sleep(20 * time.Millisecond)
	item, err := q.Pop(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, item)

	select {
	case err := <-pushed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("push did not unblock")
	}
}

func TestDisableWakesBlockedOperations(t *testing.T) {
	full, err := New[int](1)
	require.NoError(t, err)
	require.NoError(t, full.Push(1, 0))
	empty, err := New[int](1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results <- full.Push(2, time.Minute) // blocked: full
	}()
	go func() {
		defer wg.Done()
		_, err := empty.Pop(time.Minute) // blocked: empty
		results <- err
	}()

	time.Sleep(20 * time.Millisecond)
	full.Disable()
	empty.Disable()

	for i := 0; i < 2; i++ {
		select {
		case err := <-results:
			require.ErrorIs(t, err, zerrors.ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("blocked operation not woken by Disable")
		}
	}
	wg.Wait()
}

func TestDisabledFailsFast(t *testing.T) {
	q, err := New[int](4)
	require.NoError(t, err)
	require.NoError(t, q.Push(1, 0))

	assert.False(t, q.Disabled())
	q.Disable()
	q.Disable() // idempotent
	assert.True(t, q.Disabled())

	require.ErrorIs(t, q.Push(2, time.Second), zerrors.ErrClosed)
	require.ErrorIs(t, q.TryPush(2), zerrors.ErrClosed)
	_, err = q.Pop(time.Second)
	require.ErrorIs(t, err, zerrors.ErrClosed)
}

func TestDrainAfterDisable(t *testing.T) {
	q, err := New[int](8)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Push(i, 0))
	}

	q.Disable()
	drained := q.Drain()
	require.Len(t, drained, 5)
	for i, item := range drained {
		assert.Equal(t, i, item)
	}
	assert.Empty(t, q.Drain())
}

func TestConcurrentProducersConsumers(t *testing.T) {
	q, err := New[int](8)
	require.NoError(t, err)

	const total = 200
	var wg sync.WaitGroup
	seen := make(chan int, total)

	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < total/4; i++ {
				if err := q.Push(base+i, time.Second); err != nil {
					t.Errorf("push: %v", err)
					return
				}
			}
		}(p * 1000)
	}

	var cg sync.WaitGroup
	for c := 0; c < 4; c++ {
		cg.Add(1)
		go func() {
			defer cg.Done()
			for {
				item, err := q.Pop(200 * time.Millisecond)
				if err != nil {
					return
				}
				seen <- item
			}
		}()
	}

	wg.Wait()
	cg.Wait()
	close(seen)

	count := 0
	for range seen {
		count++
	}
	assert.Equal(t, total, count)
}
