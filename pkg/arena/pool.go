//go:build go1.22

// Package arena provides a segmented slab allocator with per-type free lists.
//
// Rather than carving raw blocks out of untyped segments and threading a
// free list through the first word of each freed block, a [Pool] hands out
// slice-backed elements of a single concrete type T and threads its free
// list through a plain slice of ids. This keeps every node reachable from
// ordinary Go slices, so the garbage collector needs no help walking the
// arena, at the cost of one pool per node shape instead of one untyped
// allocator for all of them. Every node kind in this module (Radix, Bucket,
// Pail, Array) owns its own Pool; since a Pool's elements are plain Go
// values rather than fixed-size byte blocks, the twelve Array size classes
// share one Pool instead of needing one apiece, with each array node
// carrying its own class for the capacity-invariant bookkeeping.
package arena

import "github.com/hattrie/hattrie/internal/debug"

// segmentLen is the number of elements carved out of each backing segment,
// big enough that most pools never grow past their first segment.
const segmentLen = 1024

// ID identifies a live element within a [Pool]. The zero ID is never handed
// out by [Pool.New], so it doubles as a "no element" sentinel the same way
// a nil pointer does.
type ID uint32

// Pool is a segmented slab allocator for values of type T, with a free list
// for recycling released elements.
//
// A zero Pool is empty and ready to use.
type Pool[T any] struct {
	segs  [][]T
	free  []ID
	count int
}

// New allocates a fresh, zero-valued T and returns its id.
//
// A previously [Pool.Free]'d element is reused in preference to growing the
// pool.
func (p *Pool[T]) New() ID {
	p.count++

	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]

		*p.at(id) = *new(T)

		debug.Log(nil, "pool.new", "reuse id=%d live=%d", id, p.count)

		return id
	}

	id := p.grow()

	debug.Log(nil, "pool.new", "fresh id=%d live=%d", id, p.count)

	return id
}

// Free releases id back to the pool for reuse. The slot is zeroed so a
// later [Pool.New] never observes stale data.
func (p *Pool[T]) Free(id ID) {
	*p.at(id) = *new(T)
	p.free = append(p.free, id)
	p.count--

	debug.Log(nil, "pool.free", "id=%d live=%d", id, p.count)
}

// At returns a pointer to the element identified by id.
//
// The pointer is valid until the next [Pool.Reset]; unlike a raw arena
// pointer it remains valid across further [Pool.New] calls, since growth
// never moves previously allocated segments.
func (p *Pool[T]) At(id ID) *T {
	return p.at(id)
}

func (p *Pool[T]) at(id ID) *T {
	seg := int(id-1) / segmentLen
	off := int(id-1) % segmentLen

	return &p.segs[seg][off]
}

// grow appends a new element, allocating a fresh segment first if the
// current one is exhausted.
func (p *Pool[T]) grow() ID {
	segIdx := len(p.segs) - 1

	if segIdx < 0 || len(p.segs[segIdx]) == cap(p.segs[segIdx]) {
		p.segs = append(p.segs, make([]T, 0, segmentLen))
		segIdx++

		debug.Log(nil, "pool.grow", "segments=%d", len(p.segs))
	}

	p.segs[segIdx] = append(p.segs[segIdx], *new(T))
	off := len(p.segs[segIdx]) - 1

	return ID(segIdx*segmentLen + off + 1)
}

// Len reports the number of currently live (non-freed) elements.
func (p *Pool[T]) Len() int { return p.count }

// Reset discards every segment and the free list, returning the pool to its
// zero state. Every [ID] previously handed out becomes invalid.
func (p *Pool[T]) Reset() {
	p.segs = nil
	p.free = nil
	p.count = 0
}
