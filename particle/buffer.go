package particle

import "fmt"

// column is the type-erased view of a Buffer the system uses to resize and
// compact every attribute in lockstep.
type column interface {
	EnsureCapacity(n int)
	Compact(newIndices []int32, count int)
	Cap() int
}

// Buffer is a growable attribute column indexed by particle.
type Buffer[T any] struct {
	data    []T
	min     int
	migrate func(old, grown []T)
}

// NewBuffer returns an empty buffer whose first allocation holds
// minCapacity entries. migrate, if set, runs after every reallocation with
// the previous and the new backing slices.
func NewBuffer[T any](minCapacity int, migrate func(old, grown []T)) *Buffer[T] {
	b := &Buffer[T]{}
	b.init(minCapacity, migrate)
	return b
}

func (b *Buffer[T]) init(minCapacity int, migrate func(old, grown []T)) {
	b.min = minCapacity
	b.migrate = migrate
}

// Cap returns the number of allocated entries.
func (b *Buffer[T]) Cap() int {
	return len(b.data)
}

// Data returns the whole allocation.
func (b *Buffer[T]) Data() []T {
	return b.data
}

// EnsureCapacity grows the buffer to at least n entries, preserving
// existing entries. Capacity at least doubles on every reallocation.
// It panics if n exceeds MaxParticleIndex.
func (b *Buffer[T]) EnsureCapacity(n int) {
	if n <= len(b.data) {
		return
	}
	if n > MaxParticleIndex {
		panic(fmt.Sprintf("particle: buffer capacity %d exceeds the maximum particle index", n))
	}
	size := max(n, 2*len(b.data), b.min)
	if size > MaxParticleIndex {
		size = MaxParticleIndex
	}
	grown := make([]T, size)
	copy(grown, b.data)
	if b.migrate != nil {
		b.migrate(b.data, grown)
	}
	b.data = grown
}

// RemoveAt removes entry i of the first count entries, shifting the
// entries above it down by one.
func (b *Buffer[T]) RemoveAt(i, count int) {
	if i < 0 || i >= count {
		return
	}
	copy(b.data[i:count-1], b.data[i+1:count])
	var zero T
	b.data[count-1] = zero
}

// Compact moves each of the first count entries to newIndices[i], dropping
// entries mapped to InvalidIndex. Surviving entries keep their order, so
// the new index never exceeds the old one. Freed tail entries are zeroed.
func (b *Buffer[T]) Compact(newIndices []int32, count int) {
	var zero T
	newCount := 0
	for i := 0; i < count; i++ {
		j := newIndices[i]
		if j == InvalidIndex {
			continue
		}
		b.data[j] = b.data[i]
		newCount = int(j) + 1
	}
	for i := newCount; i < count; i++ {
		b.data[i] = zero
	}
}
