package hattrie

import "bytes"

// Find looks up key and reports its aux payload.
//
// ok is true on a hit; when aux == 0, the returned slice is always empty
// but non-nil, a presence marker rather than a payload. The returned
// slice is valid only until the next [Hat.Cell] call on the same Hat.
func (h *Hat) Find(key []byte) (value []byte, ok bool) {
	h.guard()

	triple, off := h.triple(key)
	next := h.root[triple]

	for !next.Empty() {
		switch next.Kind() {
		case KindArray:
			node := h.array.At(next.ID())
			h.stats.Searches++

			return h.scanArray(node, key[off:])

		case KindPail:
			pail := h.pail.At(next.ID())
			h.stats.PailSteps++

			code := hashKey(key[off:]) % pailMax
			next = pail.array[code]

		case KindBucket:
			bucket := h.bucket.At(next.ID())
			h.stats.BucketSteps++

			code := hashKey(key[off:]) % bucketSlots
			next = bucket.slots[code]

		case KindRadix:
			radix := h.radix.At(next.ID())
			h.stats.RadixSteps++

			ch := 0
			if off < len(key) {
				ch = radixDigit(key[off])
				off++
			}

			next = radix.slots[ch]
		}
	}

	return nil, false
}

// scanArray linearly scans node for a record matching suffix, returning
// its aux cell (or the presence sentinel when aux == 0).
func (h *Hat) scanArray(node *arrayNode, suffix []byte) ([]byte, bool) {
	tst := 0
	idx := 0

	for tst < len(node.keys) {
		h.stats.Probes++

		key, next := recordAt(node.keys, tst)

		if len(key) == len(suffix) && bytes.Equal(key, suffix) {
			if h.aux > 0 {
				return node.aux[idx*h.aux : (idx+1)*h.aux], true
			}

			return auxSentinel, true
		}

		tst = next
		idx++
	}

	return nil, false
}
