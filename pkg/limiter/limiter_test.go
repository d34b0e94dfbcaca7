package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPanicsOnInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { New("bad", 0) })
	assert.Panics(t, func() { New("bad", -1) })
}

func TestAcquireUpToCapacity(t *testing.T) {
	l := New("test", 2)
	ctx := context.Background()

	s1, err := l.Acquire(ctx)
	require.NoError(t, err)
	s2, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.InUse())

	_, ok := l.TryAcquire()
	assert.False(t, ok, "gate at capacity must not hand out another slot")

	s1.Release()
	assert.Equal(t, int64(1), l.InUse())

	s3, ok := l.TryAcquire()
	require.True(t, ok)

	s2.Release()
	s3.Release()
	assert.Equal(t, int64(0), l.InUse())
}

func TestAcquireBlocksUntilRelease(t *testing.T) {
	l := New("test", 1)
	ctx := context.Background()

	held, err := l.Acquire(ctx)
	require.NoError(t, err)

	acquired := make(chan *Slot)
	go func() {
		slot, err := l.Acquire(ctx)
		require.NoError(t, err)
		acquired <- slot
	}()

	select {
	case <-acquired:
		t.Fatal("acquire should block while the gate is at capacity")
	case <-time.After(50 * time.Millisecond):
	}

	held.Release()

	select {
	case slot := <-acquired:
		slot.Release()
	case <-time.After(time.Second):
		t.Fatal("acquire did not wake up after release")
	}
}

func TestCancelledAcquireDoesNotLeak(t *testing.T) {
	l := New("test", 1)

	held, err := l.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), l.InUse(), "cancelled wait must not change the held count")

	held.Release()
	assert.Equal(t, int64(0), l.InUse())

	// Capacity must be fully usable again after the cancelled wait.
	slot, err := l.Acquire(context.Background())
	require.NoError(t, err)
	slot.Release()
}

func TestReleaseIsIdempotent(t *testing.T) {
	l := New("test", 1)

	slot, err := l.Acquire(context.Background())
	require.NoError(t, err)

	slot.Release()
	slot.Release()
	assert.Equal(t, int64(0), l.InUse())

	// A double release must not create phantom capacity.
	s2, ok := l.TryAcquire()
	require.True(t, ok)
	_, ok = l.TryAcquire()
	assert.False(t, ok)
	s2.Release()
}

func TestAccessors(t *testing.T) {
	l := New("read", 7)
	assert.Equal(t, "read", l.Name())
	assert.Equal(t, int64(7), l.Capacity())
	assert.Equal(t, int64(0), l.InUse())
}
