package audio

import (
	"sync/atomic"

	"ticsynth/emu/log"
)

// Ring decouples a producer ticking at the console frame rate from a
// consumer driven by the audio device. There must be a single producer,
// calling Push, and a single consumer, calling Pop.
//
// The producer never overwrites the slot the consumer may be reading: when
// full, it keeps overwriting the newest slot. When starved, the consumer
// keeps reading the last slot it was given.
type Ring[T any] struct {
	slots []T
	head  atomic.Uint32 // next slot to write
	tail  atomic.Uint32 // one past the slot to read
	n     uint32
}

// NewRing returns a ring of n slots. n is at least 2.
func NewRing[T any](n int) *Ring[T] {
	n = max(n, 2)
	return &Ring[T]{
		slots: make([]T, n),
		n:     uint32(n),
	}
}

// Cap returns the number of slots.
func (r *Ring[T]) Cap() int { return int(r.n) }

// Push copies v into the head slot, then advances the head unless the ring
// is full. It reports whether the head advanced.
func (r *Ring[T]) Push(v *T) bool {
	head := r.head.Load()
	r.slots[head] = *v

	if head == (r.tail.Load()+r.n-2)%r.n {
		log.ModRing.DebugZ("ring full").Uint32("head", head).End()
		return false
	}
	r.head.Store((head + 1) % r.n)
	return true
}

// Pop copies the slot behind the tail into v, then advances the tail unless
// the ring is empty. It reports whether the tail advanced, false meaning the
// consumer is starved and got the same value as the previous call.
func (r *Ring[T]) Pop(v *T) bool {
	tail := r.tail.Load()
	*v = r.slots[(tail+r.n-1)%r.n]

	if tail == r.head.Load() {
		return false
	}
	r.tail.Store((tail + 1) % r.n)
	return true
}

// Len returns the number of slots written but not consumed yet.
func (r *Ring[T]) Len() int {
	return int((r.head.Load() + r.n - r.tail.Load()) % r.n)
}

// Head and Tail return the current indices.
func (r *Ring[T]) Head() int { return int(r.head.Load()) }
func (r *Ring[T]) Tail() int { return int(r.tail.Load()) }

// Reset empties the ring. It must not be called concurrently with Push or
// Pop.
func (r *Ring[T]) Reset() {
	clear(r.slots)
	r.head.Store(0)
	r.tail.Store(0)
}
