package audio

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRingHeadBound(t *testing.T) {
	const n = 12
	r := NewRing[int](n)

	var advanced int
	for i := 1; i <= 20; i++ {
		v := i
		if r.Push(&v) {
			advanced++
		}
	}

	if advanced != n-2 {
		t.Errorf("head advanced %d times, want %d", advanced, n-2)
	}
	if r.Head() != n-2 || r.Len() != n-2 {
		t.Errorf("head=%d len=%d, want %d", r.Head(), r.Len(), n-2)
	}

	// Writes to a full ring land in the head slot, which is only visible to
	// the consumer once the head moves past it.
	var got []int
	for range n {
		var v int
		r.Pop(&v)
		got = append(got, v)
	}
	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("popped values mismatch (-want +got):\n%s", diff)
	}
}

func TestRingStarvation(t *testing.T) {
	r := NewRing[int](4)

	v := 42
	r.Push(&v)

	var got int
	if !r.Pop(&got) {
		t.Fatalf("first pop should advance")
	}

	for i := range 5 {
		advanced := r.Pop(&got)
		if advanced {
			t.Fatalf("pop %d: starved ring should not advance", i)
		}
		if got != 42 {
			t.Fatalf("pop %d: got %d, want 42", i, got)
		}
	}
	if r.Tail() != r.Head() {
		t.Errorf("tail=%d head=%d, want equal", r.Tail(), r.Head())
	}
}

func TestRingMinimumSize(t *testing.T) {
	r := NewRing[int](0)
	if r.Cap() != 2 {
		t.Fatalf("Cap() = %d, want 2", r.Cap())
	}

	// With 2 slots the ring is always full: the producer keeps overwriting
	// slot 0, the consumer keeps reading slot 1.
	for i := range 3 {
		v := i + 1
		if r.Push(&v) {
			t.Fatalf("push %d should not advance", i)
		}
	}
	var got int
	r.Pop(&got)
	if got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing[int](8)
	for i := range 5 {
		r.Push(&i)
	}
	r.Reset()
	if r.Len() != 0 || r.Head() != 0 || r.Tail() != 0 {
		t.Errorf("after Reset: len=%d head=%d tail=%d", r.Len(), r.Head(), r.Tail())
	}
}

// Run with -race.
func TestRingConcurrent(t *testing.T) {
	const count = 20000
	r := NewRing[[4]int](12)

	var (
		wg   sync.WaitGroup
		done atomic.Bool
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 1; i <= count; i++ {
			v := [4]int{i, i, i, i}
			r.Push(&v)
		}
		done.Store(true)
	}()

	var errs []string
	go func() {
		defer wg.Done()
		prev := 0
		for {
			finished := done.Load()

			var v [4]int
			advanced := r.Pop(&v)
			if v[0] != v[1] || v[0] != v[2] || v[0] != v[3] {
				errs = append(errs, "torn read")
				return
			}
			if v[0] < prev {
				errs = append(errs, "values went backward")
				return
			}
			prev = v[0]

			if finished && !advanced {
				return
			}
		}
	}()

	wg.Wait()
	for _, e := range errs {
		t.Error(e)
	}
}
