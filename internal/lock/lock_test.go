package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemory_SerializesSameKey(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var inside int32
	var overlaps int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Acquire(ctx, "owner-1")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			if atomic.AddInt32(&inside, 1) > 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	if overlaps != 0 {
		t.Errorf("critical section overlapped %d times for the same key", overlaps)
	}
}

func TestMemory_DifferentKeysDoNotBlock(t *testing.T) {
	m := NewMemory()

	releaseA, err := m.Acquire(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("Acquire(a): %v", err)
	}
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	releaseB, err := m.Acquire(ctx, "owner-b")
	if err != nil {
		t.Fatalf("Acquire(b) blocked by a's section: %v", err)
	}
	releaseB()
}

func TestMemory_AcquireHonorsContext(t *testing.T) {
	m := NewMemory()

	release, err := m.Acquire(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Acquire(ctx, "owner-1"); err == nil {
		t.Fatal("second Acquire succeeded while the lock was held")
	}

	release()

	// The abandoned waiter must not have consumed the token.
	ctx2, cancel2 := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel2()
	release2, err := m.Acquire(ctx2, "owner-1")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()
}

func TestMemory_SlotsAreReclaimed(t *testing.T) {
	m := NewMemory()

	release, err := m.Acquire(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()
	release() // double release is safe

	m.mu.Lock()
	n := len(m.slots)
	m.mu.Unlock()
	if n != 0 {
		t.Errorf("slots not reclaimed, %d left", n)
	}
}
