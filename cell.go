package hattrie

import "github.com/hattrie/hattrie/internal/debug"

// auxSentinel is returned by [Hat.Cell] and [Hat.Find] in place of an aux
// cell when this Hat was opened with aux == 0: a non-nil, always-empty
// slice serving as a presence marker when there is no payload to point at.
var auxSentinel = make([]byte, 0)

func (h *Hat) sentinel(cell []byte) []byte {
	if h.aux == 0 {
		return auxSentinel
	}

	return cell
}

// insertDone records a successful new-key insertion and returns its cell.
func (h *Hat) insertDone(cell []byte) []byte {
	h.count++

	return h.sentinel(cell)
}

// Cell inserts key if absent and returns its aux cell either way: a fresh,
// zeroed cell for a new key, or the existing cell for one already
// present (idempotent re-insertion never grows the record count). The
// returned slice is valid only until the next call to Cell on this Hat,
// since a subsequent insert may promote or burst the node backing it.
func (h *Hat) Cell(key []byte) []byte {
	h.guard()

	if len(key) > maxKeyLen {
		panic("hattrie: key exceeds maximum length")
	}

	triple, off := h.triple(key)
	next := &h.root[triple]

	var parent *Slot

	var parentBucket *bucketNode

	for {
		if next.Empty() {
			if parent != nil {
				if parentBucket.count < bucketMax {
					parentBucket.count++
					s, cell := h.newArrayNode(key[off:])
					*next = s

					return h.insertDone(cell)
				}

				h.burstBucket(parent)
				next = parent
				parent = nil

				continue
			}

			s, cell := h.newArrayNode(key[off:])
			*next = s

			return h.insertDone(cell)
		}

		switch next.Kind() {
		case KindArray:
			node := h.array.At(next.ID())

			if v, found := h.scanArray(node, key[off:]); found {
				return h.sentinel(v)
			}

			if parent != nil {
				if parentBucket.count < bucketMax {
					parentBucket.count++

					if cell, ok := h.addArray(next, node, key[off:], true); ok {
						return h.insertDone(cell)
					}
				}

				h.burstBucket(parent)
				next = parent
				parent = nil

				continue
			}

			if cell, ok := h.addArray(next, node, key[off:], true); ok {
				return h.insertDone(cell)
			}

			h.burstSlot(next)

			continue

		case KindPail:
			pail := h.pail.At(next.ID())
			code := hashKey(key[off:]) % pailMax
			childSlot := &pail.array[code]

			if !childSlot.Empty() {
				arr := h.array.At(childSlot.ID())
				if v, found := h.scanArray(arr, key[off:]); found {
					return h.sentinel(v)
				}
			}

			if parent != nil {
				if parentBucket.count < bucketMax {
					parentBucket.count++

					if cell, ok := h.addPail(next, pail, key[off:]); ok {
						return h.insertDone(cell)
					}
				}

				h.burstBucket(parent)
				next = parent
				parent = nil

				continue
			}

			if cell, ok := h.addPail(next, pail, key[off:]); ok {
				return h.insertDone(cell)
			}

			h.burstPail(next)

			continue

		case KindBucket:
			bucket := h.bucket.At(next.ID())
			code := hashKey(key[off:]) % bucketSlots

			parent = next
			parentBucket = bucket
			next = &bucket.slots[code]

			continue

		case KindRadix:
			radix := h.radix.At(next.ID())

			ch := 0
			if off < len(key) {
				ch = radixDigit(key[off])
				off++
			}

			next = &radix.slots[ch]

			debug.Log(nil, "cell.descend", "radix ch=%d", ch)

			continue
		}
	}
}
