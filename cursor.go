package hattrie

import (
	"bytes"

	"github.com/hattrie/hattrie/internal/debug"
)

// sortRecord is one (key, aux) pair materialized from a leaf-tier subtree
// (an Array, or every Array reachable through a Pail or Bucket) while a
// [Cursor] visits it. key is the suffix stored in the node, not the full
// original key: the bytes consumed by the path above the leaf (triple-root
// digits and Radix bytes) are reconstructed separately by [Cursor.Key].
type sortRecord struct {
	key []byte
	aux []byte
}

// cursorFrame is one level of a [Cursor]'s path: either the triple-root
// (slots == h.root, pos in [0, len(h.root))) or a Radix node's children
// (slots == radix.slots[:], pos in [0, radixFanOut)).
type cursorFrame struct {
	slots []Slot
	pos   int
}

// Cursor performs an in-order (lexicographic byte order) traversal of a
// Hat. A Cursor holds a path stack through Radix nodes down to the
// leaf-tier node (Array, Pail, or Bucket) it is currently positioned in,
// plus that leaf's records flattened and sorted into a flat array.
//
// A Cursor is single-epoch: it caches pointers into node interiors, and
// any [Hat.Cell] call may promote or burst those nodes out from under it.
// Callers must not call Cell on a Hat while a Cursor over it is in use.
//
// The zero Cursor is not usable; construct one with [Hat.Cursor].
type Cursor struct {
	hat   *Hat
	stack []cursorFrame
	recs  []sortRecord
	idx   int
	done  bool
}

// Cursor returns a new, unpositioned Cursor over h. Call [Cursor.Start] or
// [Cursor.Last] to position it; [Cursor.Next] and [Cursor.Prev] on an
// unpositioned Cursor report false.
func (h *Hat) Cursor() *Cursor {
	return &Cursor{hat: h, done: true}
}

func (c *Cursor) reset() {
	c.stack = c.stack[:0]
	c.recs = c.recs[:0]
	c.idx = 0
	c.done = true
}

// Start positions c at the least key k already stored with k >= key
// (lexicographic, length-extending comparison: a prefix sorts before any
// extension of itself) and reports whether such a key exists. An empty
// key positions c at the first key in the Hat, if any.
func (c *Cursor) Start(key []byte) bool {
	c.hat.guard()
	c.reset()

	triple, off := c.hat.triple(key)

	slots := c.hat.root
	pos := triple

	for {
		if pos >= len(slots) || slots[pos].Empty() {
			if c.descendLeftmost(slots, pos+1) || c.climbForward() {
				return true
			}

			c.done = true

			return false
		}

		c.stack = append(c.stack, cursorFrame{slots: slots, pos: pos})
		slot := slots[pos]

		if slot.Kind() != KindRadix {
			c.materializeLeaf(slot)

			return c.seekInLeaf(key[off:])
		}

		radix := c.hat.radix.At(slot.ID())
		slots = radix.slots[:]

		pos = 0
		if off < len(key) {
			pos = radixDigit(key[off])
			off++
		}
	}
}

// seekInLeaf positions c at the first record of its (already sorted)
// current leaf whose key is >= suffix, falling back to climbing to the
// next reachable leaf if no such record exists in this one.
func (c *Cursor) seekInLeaf(suffix []byte) bool {
	for i, r := range c.recs {
		if bytes.Compare(r.key, suffix) >= 0 {
			c.idx = i
			c.done = false

			return true
		}
	}

	if c.climbForward() {
		return true
	}

	c.done = true

	return false
}

// Last positions c at the greatest key currently stored, reporting false
// if the Hat is empty.
func (c *Cursor) Last() bool {
	c.hat.guard()
	c.reset()

	if c.descendRightmost(c.hat.root, len(c.hat.root)-1) {
		return true
	}

	c.done = true

	return false
}

// Next advances c to the next key in ascending order, reporting whether
// one exists. Calling Next on a done cursor always reports false.
func (c *Cursor) Next() bool {
	c.hat.guard()

	if c.done {
		return false
	}

	if c.idx+1 < len(c.recs) {
		c.idx++

		return true
	}

	if c.climbForward() {
		return true
	}

	c.done = true

	return false
}

// Prev retreats c to the previous key in ascending order (i.e. the next
// key in descending order), reporting whether one exists.
func (c *Cursor) Prev() bool {
	c.hat.guard()

	if c.done {
		return false
	}

	if c.idx > 0 {
		c.idx--

		return true
	}

	if c.climbBackward() {
		return true
	}

	c.done = true

	return false
}

// climbForward pops path frames, each time resuming the scan one slot
// past where that frame was positioned, until it finds one with a
// reachable leaf or the stack is exhausted.
func (c *Cursor) climbForward() bool {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]

		if c.descendLeftmost(top.slots, top.pos+1) {
			return true
		}
	}

	return false
}

// climbBackward is climbForward's mirror image, used by [Cursor.Prev].
func (c *Cursor) climbBackward() bool {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]

		if c.descendRightmost(top.slots, top.pos-1) {
			return true
		}
	}

	return false
}

// descendLeftmost scans slots from from (inclusive) for the first
// non-empty slot, pushes a frame for it, and descends into it taking the
// first non-empty child at every Radix level until a leaf is reached and
// materialized. Reports whether a reachable leaf was found; on failure
// the stack is left exactly as it was on entry.
func (c *Cursor) descendLeftmost(slots []Slot, from int) bool {
	for pos := from; pos < len(slots); pos++ {
		if slots[pos].Empty() {
			continue
		}

		c.stack = append(c.stack, cursorFrame{slots: slots, pos: pos})

		if c.enterSlot(slots[pos], true) {
			return true
		}

		c.stack = c.stack[:len(c.stack)-1]
	}

	return false
}

// descendRightmost is descendLeftmost's mirror image: it scans backward
// from from and, at every Radix level, takes the last non-empty child.
func (c *Cursor) descendRightmost(slots []Slot, from int) bool {
	for pos := from; pos >= 0; pos-- {
		if slots[pos].Empty() {
			continue
		}

		c.stack = append(c.stack, cursorFrame{slots: slots, pos: pos})

		if c.enterSlot(slots[pos], false) {
			return true
		}

		c.stack = c.stack[:len(c.stack)-1]
	}

	return false
}

// enterSlot continues a descent into slot: a Radix node recurses one
// level deeper (leftmost or rightmost child per leftmost), while any
// leaf-tier node (Array, Pail, Bucket) is materialized and sorted, with
// idx set to its first or last record.
func (c *Cursor) enterSlot(slot Slot, leftmost bool) bool {
	if slot.Kind() == KindRadix {
		radix := c.hat.radix.At(slot.ID())

		if leftmost {
			return c.descendLeftmost(radix.slots[:], 0)
		}

		return c.descendRightmost(radix.slots[:], radixFanOut-1)
	}

	c.materializeLeaf(slot)

	if len(c.recs) == 0 {
		// Only the bootlvl==0 pre-seeded empty root Bucket reaches here
		// in practice, since nothing else ever frees a non-empty node
		// without replacing it with an equally non-empty one.
		return false
	}

	if leftmost {
		c.idx = 0
	} else {
		c.idx = len(c.recs) - 1
	}

	c.done = false

	return true
}

// materializeLeaf flattens every record reachable from slot without
// crossing another Radix node into c.recs and sorts it by key, the
// on-the-fly ternary key sort that reconstructs lexicographic order over
// an otherwise unordered hashed tier.
func (c *Cursor) materializeLeaf(slot Slot) {
	c.recs = c.recs[:0]
	c.stripLeaf(slot)
	quicksort(c.recs, 0)

	debug.Log(nil, "cursor.materialize", "kind=%s recs=%d", slot.Kind(), len(c.recs))
}

func (c *Cursor) stripLeaf(slot Slot) {
	switch slot.Kind() {
	case KindArray:
		node := c.hat.array.At(slot.ID())
		c.hat.stripArrayInto(node, func(key, value []byte) {
			c.recs = append(c.recs, sortRecord{key: key, aux: value})
		})

	case KindPail:
		pail := c.hat.pail.At(slot.ID())

		for i := range pail.array {
			if !pail.array[i].Empty() {
				c.stripLeaf(pail.array[i])
			}
		}

	case KindBucket:
		bucket := c.hat.bucket.At(slot.ID())

		for i := range bucket.slots {
			if !bucket.slots[i].Empty() {
				c.stripLeaf(bucket.slots[i])
			}
		}
	}
}

// Key reconstructs the full key at c's current position into a freshly
// allocated slice: the triple-root's bootlvl base-128 digits, then the
// per-Radix-level scan byte at every level of the path, then the current
// record's own key bytes. A synthesized zero digit or byte (standing in
// for a key shorter than the path that produced it, per the folding rule
// every descent in this package applies) is indistinguishable from a real
// NUL at that position and is dropped, exactly as it is never written in
// the first place by any non-degenerate key.
//
// Key returns nil if c is not positioned.
func (c *Cursor) Key() []byte {
	if c.done {
		return nil
	}

	var buf []byte

	if len(c.stack) > 0 {
		root := c.stack[0]
		digits := make([]byte, c.hat.bootlvl)
		rem := root.pos

		for i := c.hat.bootlvl - 1; i >= 0; i-- {
			digits[i] = byte(rem % radixFanOut)
			rem /= radixFanOut
		}

		for _, d := range digits {
			if d != 0 {
				buf = append(buf, d)
			}
		}

		for _, frame := range c.stack[1:] {
			if frame.pos != 0 {
				buf = append(buf, byte(frame.pos))
			}
		}
	}

	return append(buf, c.recs[c.idx].key...)
}

// Slot returns the aux payload at c's current position, or nil if c is
// not positioned. When the owning Hat was opened with aux == 0 this is a
// non-nil, always-empty presence marker, the same sentinel [Hat.Cell] and
// [Hat.Find] return.
func (c *Cursor) Slot() []byte {
	if c.done {
		return nil
	}

	return c.hat.sentinel(c.recs[c.idx].aux)
}
