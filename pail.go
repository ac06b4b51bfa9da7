package hattrie

import "github.com/hattrie/hattrie/internal/debug"

// pailMax is the number of slots in a Pail node. The Pail tier is always in
// use: an Array that outgrows the largest size class under pailOK=true is
// converted to a Pail, and a value of 0 is not supported, since every Pail
// dispatch site takes its hash modulo pailMax.
const pailMax = 127

// pailNode is a 127-way hash dispatch to Array children. Pails never
// nest: every non-empty slot always points at an Array node.
type pailNode struct {
	array [pailMax]Slot
}

// addPail adds key to pail, dispatching by hash(key) mod pailMax. Returns
// the aux cell and true on success, or false if the target Array's
// largest size class cannot accept the record (Pails do not nest, so the
// child Array is never allowed to overflow into a nested Pail).
func (h *Hat) addPail(parent *Slot, pail *pailNode, key []byte) ([]byte, bool) {
	code := hashKey(key) % pailMax
	slot := pail.array[code]

	if slot.Empty() {
		s, cell := h.newArrayNode(key)
		pail.array[code] = s

		return cell, true
	}

	arr := h.array.At(slot.ID())

	return h.addArray(&pail.array[code], arr, key, false)
}

// newPail materializes a Pail from a full Array node: every record is
// redistributed into the new Pail via addArray/newArrayNode, the old
// Array is freed, and the triggering key is inserted via addPail.
func (h *Hat) newPail(parent *Slot, node *arrayNode, key []byte) ([]byte, bool) {
	id := h.pail.New()
	pail := h.pail.At(id)

	h.stripArrayInto(node, func(k, value []byte) {
		code := hashKey(k) % pailMax
		slot := pail.array[code]

		var cell []byte

		if slot.Empty() {
			s, c := h.newArrayNode(k)
			pail.array[code] = s
			cell = c
		} else {
			arr := h.array.At(slot.ID())
			cell, _ = h.addArray(&pail.array[code], arr, k, false)
		}

		if h.aux > 0 {
			copy(cell, value)
		}
	})

	h.array.Free(parent.ID())
	*parent = newSlot(KindPail, id)

	h.stats.ArrayToPail++

	debug.Log(nil, "pail.new", "burst array -> pail id=%d", id)

	return h.addPail(parent, pail, key)
}

// burstPail converts a Pail into a Bucket: every record held by every
// non-empty child Array is redistributed by hash(key) mod bucketSlots,
// landing on an empty slot (new Array), an existing Array (addArray), or
// an existing Pail (addPail, since two colliding records from this same
// redistribution may both overflow into a fresh sub-Pail).
func (h *Hat) burstPail(parent *Slot) {
	pail := h.pail.At(parent.ID())

	id := h.bucket.New()
	bucket := h.bucket.At(id)

	for i := range pail.array {
		slot := pail.array[i]
		if slot.Empty() {
			continue
		}

		arr := h.array.At(slot.ID())
		h.stripArrayInto(arr, func(key, value []byte) {
			h.placeInBucket(bucket, key, value)
		})

		h.array.Free(slot.ID())
	}

	h.pail.Free(parent.ID())
	*parent = newSlot(KindBucket, id)

	h.stats.PailBursts++

	debug.Log(nil, "burst.pail", "-> bucket id=%d", id)
}
