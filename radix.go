package hattrie

import "github.com/hattrie/hattrie/internal/debug"

// radixFanOut is the number of children a Radix node holds. A key byte
// ranges over 0-255; every byte >= 128 folds into slot 0 at every radix
// descent site, both here and in the triple-root computation in
// [Hat.triple], biasing the structure toward keys of 7-bit bytes.
const radixFanOut = 128

// radixDigit maps a key byte to a Radix node slot index, folding bytes ≥
// 128 into slot 0.
func radixDigit(b byte) int {
	if b >= radixFanOut {
		return 0
	}

	return int(b)
}

// radixNode is a 128-way fan-out node. Each slot holds a reference to a
// Bucket, Pail, Array, or nested Radix node for the key byte that slot's
// index represents.
type radixNode struct {
	slots [radixFanOut]Slot
}

// newRadixNode allocates an empty Radix node and returns a Slot for it.
func (h *Hat) newRadixNode() Slot {
	id := h.radix.New()

	return newSlot(KindRadix, id)
}

// addRadix re-inserts a (key, value) pair one byte at a time under a
// Radix node, used while bursting a Bucket into its replacement Radix
// node. buff is the key with the bytes already consumed by ancestor nodes
// stripped off.
func (h *Hat) addRadix(radix *radixNode, buff []byte, value []byte) {
	ch := 0
	rest := buff

	if len(buff) > 0 {
		ch = radixDigit(buff[0])
		rest = buff[1:]
	}

	for {
		slot := radix.slots[ch]

		if slot.Empty() {
			s, cell := h.newArrayNode(rest)
			radix.slots[ch] = s

			if h.aux > 0 {
				copy(cell, value)
			}

			return
		}

		switch slot.Kind() {
		case KindBucket:
			bucket := h.bucket.At(slot.ID())

			if _, ok := h.addBucket(bucket, rest, value); ok {
				return
			}

			h.burstBucket(&radix.slots[ch])

			continue

		case KindRadix:
			child := h.radix.At(slot.ID())
			h.addRadix(child, rest, value)

			return

		case KindArray:
			arr := h.array.At(slot.ID())

			if cell, ok := h.addArray(&radix.slots[ch], arr, rest, true); ok {
				if h.aux > 0 {
					copy(cell, value)
				}

				return
			}

			h.burstSlot(&radix.slots[ch])

			continue

		case KindPail:
			pail := h.pail.At(slot.ID())

			if cell, ok := h.addPail(&radix.slots[ch], pail, rest); ok {
				if h.aux > 0 {
					copy(cell, value)
				}

				return
			}

			h.burstPail(&radix.slots[ch])

			continue
		}
	}
}

// burstBucket decomposes a full Bucket node into a Radix node, replacing
// *parent and re-inserting every record one byte shorter via addRadix.
func (h *Hat) burstBucket(parent *Slot) {
	bucket := h.bucket.At(parent.ID())

	radixSlot := h.newRadixNode()
	radix := h.radix.At(radixSlot.ID())

	for i := range bucket.slots {
		child := bucket.slots[i]
		if child.Empty() {
			continue
		}

		switch child.Kind() {
		case KindArray:
			arr := h.array.At(child.ID())
			h.stripArrayInto(arr, func(key, value []byte) { h.addRadix(radix, key, value) })
			h.array.Free(child.ID())

		case KindPail:
			pail := h.pail.At(child.ID())

			for j := range pail.array {
				ps := pail.array[j]
				if ps.Empty() {
					continue
				}

				arr := h.array.At(ps.ID())
				h.stripArrayInto(arr, func(key, value []byte) { h.addRadix(radix, key, value) })
				h.array.Free(ps.ID())
			}

			h.pail.Free(child.ID())
		}
	}

	h.bucket.Free(parent.ID())
	*parent = radixSlot

	h.stats.BucketBursts++

	debug.Log(nil, "burst.bucket", "-> radix id=%d", radixSlot.ID())
}
