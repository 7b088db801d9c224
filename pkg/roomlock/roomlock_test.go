package roomlock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	k := NewKeyed()

	release, err := k.Acquire("room-a", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, k.Len())

	release()
	assert.Equal(t, 0, k.Len())

	// Releasing twice is harmless.
	release()
	assert.Equal(t, 0, k.Len())
}

func TestAcquire_BusyWhileHeld(t *testing.T) {
	k := NewKeyed()

	release, err := k.Acquire("room-a", 0)
	require.NoError(t, err)
	defer release()

	_, err = k.Acquire("room-a", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrBusy)

	_, ok := k.TryAcquire("room-a")
	assert.False(t, ok)
}

func TestAcquire_DifferentKeysDoNotContend(t *testing.T) {
	k := NewKeyed()

	ra, err := k.Acquire("room-a", 0)
	require.NoError(t, err)
	defer ra()

	rb, err := k.Acquire("room-b", 0)
	require.NoError(t, err)
	defer rb()

	assert.Equal(t, 2, k.Len())
}

func TestAcquire_HandoffWithinWait(t *testing.T) {
	k := NewKeyed()

	release, err := k.Acquire("room-a", 0)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	second, err := k.Acquire("room-a", time.Second)
	require.NoError(t, err)
	second()
	assert.Equal(t, 0, k.Len())
}

func TestAcquire_MutualExclusion(t *testing.T) {
	k := NewKeyed()

	var counter, max int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Acquire("room-a", 5*time.Second)
			if err != nil {
				t.Error(err)
				return
			}
			defer release()

			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max)
	assert.Equal(t, 0, k.Len())
}
