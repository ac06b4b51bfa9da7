package hattrie

import "github.com/hattrie/hattrie/internal/debug"

// bucketSlots is the number of slots in a Bucket node.
const bucketSlots = 2047

// bucketMax is the record count at which a Bucket must burst into a Radix
// node rather than accept another record.
const bucketMax = 65536

// bucketNode is a 2047-way hash dispatch to Array or Pail children, used
// as the top tier of the hashed portion of the trie before it gives way
// to a Radix node.
type bucketNode struct {
	count int
	slots [bucketSlots]Slot
}

// addBucket adds key to bucket, pre-incrementing bucket.count so the
// overflow check and the eventual child insert share one counter. Returns
// false if the bucket has reached bucketMax (the caller must burst and
// retry) or if the target child refused the record.
func (h *Hat) addBucket(bucket *bucketNode, key []byte, value []byte) ([]byte, bool) {
	if bucket.count >= bucketMax {
		debug.Log(nil, "bucket.overflow", "count=%d", bucket.count)

		return nil, false
	}

	bucket.count++

	code := hashKey(key) % bucketSlots
	slot := bucket.slots[code]

	var cell []byte

	switch {
	case slot.Empty():
		s, c := h.newArrayNode(key)
		bucket.slots[code] = s
		cell = c

	case slot.Kind() == KindArray:
		arr := h.array.At(slot.ID())

		c, ok := h.addArray(&bucket.slots[code], arr, key, true)
		if !ok {
			return nil, false
		}

		cell = c

	default: // KindPail
		pail := h.pail.At(slot.ID())

		c, ok := h.addPail(&bucket.slots[code], pail, key)
		if !ok {
			return nil, false
		}

		cell = c
	}

	if h.aux > 0 {
		copy(cell, value)
	}

	return cell, true
}

// placeInBucket redistributes a single record into bucket during a burst
// (Array→Bucket or Pail→Bucket). Unlike addBucket, it never refuses: a
// child Array that can't accept the record overflows into a Pail, and
// bucket.count is incremented unconditionally.
func (h *Hat) placeInBucket(bucket *bucketNode, key []byte, value []byte) {
	code := hashKey(key) % bucketSlots
	slot := bucket.slots[code]

	var cell []byte

	var ok = true

	switch {
	case slot.Empty():
		s, c := h.newArrayNode(key)
		bucket.slots[code] = s
		cell = c

	case slot.Kind() == KindArray:
		arr := h.array.At(slot.ID())
		cell, ok = h.addArray(&bucket.slots[code], arr, key, true)

	default: // KindPail
		pail := h.pail.At(slot.ID())
		cell, ok = h.addPail(&bucket.slots[code], pail, key)
	}

	bucket.count++

	debug.Assert(ok, "placeInBucket: a single dispatch slot collided hard enough during redistribution to exceed its own Pail capacity")

	if h.aux > 0 && ok {
		copy(cell, value)
	}
}

// newBucketNode allocates an empty Bucket node and returns a Slot for it.
func (h *Hat) newBucketNode() Slot {
	id := h.bucket.New()

	return newSlot(KindBucket, id)
}
