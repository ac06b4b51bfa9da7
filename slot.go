// Package hattrie implements an in-memory, ordered, associative container
// keyed by variable-length byte strings using a hybrid HAT-trie: a trie of
// 128-way Radix nodes descending into hashed Bucket and Pail nodes, which
// in turn hold small Array nodes of length-prefixed key records. Each key
// maps to a fixed-size, caller-owned auxiliary payload assigned at Open.
package hattrie

import "github.com/hattrie/hattrie/pkg/arena"

// Kind discriminates the four node shapes a Slot can point at. The
// discriminator lives alongside an [arena.ID] rather than inside the low
// bits of a raw tagged pointer, since this package never uses
// unsafe.Pointer arithmetic.
type Kind uint8

const (
	KindRadix Kind = iota
	KindBucket
	KindPail
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindRadix:
		return "radix"
	case KindBucket:
		return "bucket"
	case KindPail:
		return "pail"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

const slotKindBits = 2
const slotKindMask = Slot(1<<slotKindBits - 1)

// Slot is a tagged reference to a node: a [Kind] packed with the
// [arena.ID] of the node within its kind's pool. The zero Slot never
// refers to a live node (arena IDs start at 1), so it doubles as the
// "empty" sentinel.
type Slot uint64

func newSlot(k Kind, id arena.ID) Slot {
	return Slot(id)<<slotKindBits | Slot(k)
}

// Kind returns the node kind this slot discriminates to.
func (s Slot) Kind() Kind { return Kind(s & slotKindMask) }

// ID returns the arena id of the node this slot points at.
func (s Slot) ID() arena.ID { return arena.ID(s >> slotKindBits) }

// Empty reports whether this slot refers to no node.
func (s Slot) Empty() bool { return s == 0 }
