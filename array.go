package hattrie

import (
	"fmt"

	"github.com/hattrie/hattrie/internal/debug"
)

// arrayClassRecords lists the twelve Array size classes as record counts;
// a class's byte capacity is its entry multiplied by nodeGranule.
var arrayClassRecords = [...]int{1, 2, 3, 4, 6, 8, 10, 12, 14, 16, 24, 32}

// nodeGranule is the per-record byte budget a size class's record count is
// multiplied by.
const nodeGranule = 16

// maxArrayClass is the largest valid array size-class index.
const maxArrayClass = len(arrayClassRecords) - 1

// arrayHeaderSize is the byte budget the capacity invariant reserves for
// the node header: a 2-byte next-free key offset, a 1-byte size-class tag,
// and a 1-byte record count.
const arrayHeaderSize = 4

func classCapacityBytes(class int) int {
	return arrayClassRecords[class] * nodeGranule
}

// fits reports whether one more record of amt key bytes (skip-byte length
// prefix) fits in an Array node of the given class already holding cnt
// records and nxt bytes of key data: sizeof(header) + nxt + amt + skip +
// (cnt+1)*aux ≤ SizeOf(class). cnt is additionally capped at 255
// unconditionally, regardless of aux size.
func (h *Hat) fits(class, nxt, cnt, amt int) bool {
	if cnt >= 255 {
		return false
	}

	skip := lenSkip(amt)

	return arrayHeaderSize+nxt+amt+skip+(cnt+1)*h.aux <= classCapacityBytes(class)
}

// arrayNode holds a sequence of length-prefixed key records packed into
// keys, and a parallel sequence of fixed-size auxiliary payloads in aux.
// Record k's aux payload lives at aux[k*h.aux:(k+1)*h.aux]; a Hat never
// reorders records within a node, so aux ordering always matches key
// insertion order.
type arrayNode struct {
	class int
	cnt   int
	keys  []byte
	aux   []byte
}

// newArrayNode allocates the smallest Array size class that can hold a
// single record for key, used when the parent slot was empty.
func (h *Hat) newArrayNode(key []byte) (Slot, []byte) {
	class, ok := h.smallestClassFor(0, len(key))
	if !ok {
		// A single key longer than the largest size class can accept
		// cannot be represented by this Hat at all; the codec's
		// 2-byte length prefix describes the representable range, not
		// a guarantee every such key fits alone in one node. This is the
		// engine's one fatal, unrecoverable structural failure, so it
		// aborts with a stack trace rather than returning an error a
		// caller might be tempted to retry from.
		panic(fmt.Errorf("hattrie: key too large for any array size class\n%s", debug.Stack(2)))
	}

	id := h.array.New()
	node := h.array.At(id)
	node.class = class
	node.keys = appendRecord(nil, key)
	node.cnt = 1

	if h.aux > 0 {
		node.aux = make([]byte, h.aux)
	}

	debug.Log(nil, "array.new", "class=%d len=%d", class, len(key))

	return newSlot(KindArray, id), node.aux
}

// smallestClassFor finds the smallest empty array size class, starting no
// lower than minClass, that can hold a single amt-byte record.
func (h *Hat) smallestClassFor(minClass, amt int) (int, bool) {
	for class := minClass; class <= maxArrayClass; class++ {
		if h.fits(class, 0, 0, amt) {
			return class, true
		}
	}

	return 0, false
}

// addArray appends key to node if it still fits within node's current
// size class, otherwise promotes it. pailOK controls whether a promotion
// that exceeds even the largest class may overflow into a Pail instead of
// failing outright (Pails never nest, so a node already inside a Pail
// passes pailOK=false).
func (h *Hat) addArray(parent *Slot, node *arrayNode, key []byte, pailOK bool) ([]byte, bool) {
	if h.fits(node.class, len(node.keys), node.cnt, len(key)) {
		node.keys = appendRecord(node.keys, key)
		node.cnt++

		var cell []byte

		if h.aux > 0 {
			node.aux = append(node.aux, make([]byte, h.aux)...)
			cell = node.aux[len(node.aux)-h.aux:]
		}

		return cell, true
	}

	return h.promoteArray(parent, node, key, pailOK)
}

// promoteArray grows node to the smallest size class able to hold its
// existing records plus one more. If no class fits and pailOK is set, the
// node is converted to a Pail instead via [Hat.newPail].
func (h *Hat) promoteArray(parent *Slot, node *arrayNode, key []byte, pailOK bool) ([]byte, bool) {
	class, ok := h.classForGrowth(node, len(key))
	if !ok {
		if pailOK {
			return h.newPail(parent, node, key)
		}

		return nil, false
	}

	oldID := parent.ID()

	newID := h.array.New()
	newNode := h.array.At(newID)
	newNode.class = class
	newNode.keys = append([]byte(nil), node.keys...)
	newNode.keys = appendRecord(newNode.keys, key)
	newNode.cnt = node.cnt + 1

	if h.aux > 0 {
		newNode.aux = append(append([]byte(nil), node.aux...), make([]byte, h.aux)...)
	}

	*parent = newSlot(KindArray, newID)
	h.array.Free(oldID)

	h.stats.ArrayPromotions++

	debug.Log(nil, "array.promote", "class=%d cnt=%d", class, newNode.cnt)

	if h.aux > 0 {
		return newNode.aux[len(newNode.aux)-h.aux:], true
	}

	return nil, true
}

// classForGrowth finds the smallest class at or above node's current
// class that can hold node's existing records plus one more of length
// amt, honoring the unconditional 255-record cap.
func (h *Hat) classForGrowth(node *arrayNode, amt int) (int, bool) {
	if node.cnt >= 255 {
		return 0, false
	}

	for class := node.class; class <= maxArrayClass; class++ {
		if h.fits(class, len(node.keys), node.cnt, amt) {
			return class, true
		}
	}

	return 0, false
}

// appendRecord appends a length-prefixed copy of key to keys.
func appendRecord(keys, key []byte) []byte {
	skip := lenSkip(len(key))
	prefix := make([]byte, skip)
	encodeLen(prefix, len(key))

	keys = append(keys, prefix...)
	keys = append(keys, key...)

	return keys
}

// recordAt decodes the record starting at offset tst within keys,
// returning the key bytes and the offset just past the record.
func recordAt(keys []byte, tst int) (key []byte, next int) {
	n, skip := decodeLen(keys[tst:])
	start := tst + skip

	return keys[start : start+n], start + n
}

// stripArrayInto invokes fn for every (key, aux) record stored in node, in
// insertion order.
func (h *Hat) stripArrayInto(node *arrayNode, fn func(key, value []byte)) {
	tst := 0
	idx := 0

	for tst < len(node.keys) {
		key, next := recordAt(node.keys, tst)

		var value []byte

		if h.aux > 0 {
			value = node.aux[idx*h.aux : (idx+1)*h.aux]
		}

		fn(key, value)

		tst = next
		idx++
	}
}

// burstArray decomposes a full Array node into a Bucket node, redistributing
// every record by hash(key) mod 2047.
func (h *Hat) burstArray(parent *Slot) {
	node := h.array.At(parent.ID())

	id := h.bucket.New()
	bucket := h.bucket.At(id)

	h.stripArrayInto(node, func(key, value []byte) {
		h.placeInBucket(bucket, key, value)
	})

	h.array.Free(parent.ID())
	*parent = newSlot(KindBucket, id)

	h.stats.ArrayBursts++

	debug.Log(nil, "burst.array", "-> bucket id=%d", id)
}

// burstSlot bursts parent into a Bucket node regardless of whether it is
// currently an Array or a Pail. A failed [Hat.addArray] call with
// pailOK=true may have already converted parent from Array to Pail (via
// promoteArray's fallback to [Hat.newPail]) before its final insert
// failed, so a caller reacting to that failure cannot assume parent is
// still the kind it passed in.
func (h *Hat) burstSlot(parent *Slot) {
	switch parent.Kind() {
	case KindArray:
		h.burstArray(parent)
	case KindPail:
		h.burstPail(parent)
	}
}
