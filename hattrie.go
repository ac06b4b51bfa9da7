package hattrie

import (
	"errors"
	"fmt"

	"github.com/timandy/routine"

	"github.com/hattrie/hattrie/internal/debug"
	"github.com/hattrie/hattrie/pkg/arena"
)

// routineGoid reports the calling goroutine's id, used only by [Hat.guard]
// to diagnose accidental concurrent use of a single Hat in debug builds.
func routineGoid() int64 { return int64(routine.Goid()) }

// maxBootLevel bounds how many cascaded 128-way digits the flattened
// triple-root may fan out over; 128^3 slots (2M) is already a large root
// array, and a higher level only multiplies the root's footprint.
const maxBootLevel = 3

// Hat is an ordered associative container mapping variable-length byte
// keys to a fixed-size auxiliary payload. The zero value is not usable;
// construct one with [Open].
//
// A Hat is not safe for concurrent use: all operations on one Hat must run
// on a single goroutine at a time, though independent Hat values may run
// on independent goroutines freely.
type Hat struct {
	radix  arena.Pool[radixNode]
	bucket arena.Pool[bucketNode]
	pail   arena.Pool[pailNode]
	array  arena.Pool[arrayNode]

	root    []Slot
	bootlvl int
	aux     int
	count   int
	stats   Stats

	owner debug.Value[int64]
}

// Open creates an empty Hat.
//
// bootlvl selects how many 128-way digits the root fans out over before
// the usual Bucket/Pail/Array/Radix machinery takes over (0 through 3); a
// larger bootlvl trades a bigger up-front root array for fewer bursts
// under heavy fan-out near the root. aux is the number of bytes of
// caller-owned payload stored alongside each key, fixed for the lifetime
// of the Hat.
func Open(bootlvl, aux int) (*Hat, error) {
	if bootlvl < 0 || bootlvl > maxBootLevel {
		return nil, fmt.Errorf("hattrie: bootlvl must be in [0, %d], got %d", maxBootLevel, bootlvl)
	}

	if aux < 0 {
		return nil, errors.New("hattrie: aux must be non-negative")
	}

	hat := &Hat{bootlvl: bootlvl, aux: aux}

	if _, ok := hat.smallestClassFor(0, 1); !ok {
		return nil, fmt.Errorf("hattrie: aux=%d leaves no room for a 1-byte key in any array size class", aux)
	}

	rootLen := 1
	for i := 0; i < bootlvl; i++ {
		rootLen *= 128
	}

	hat.root = make([]Slot, rootLen)

	if bootlvl == 0 {
		hat.root[0] = hat.newBucketNode()
	}

	debug.Log(nil, "open", "bootlvl=%d aux=%d root=%d", bootlvl, aux, rootLen)

	return hat, nil
}

// Close releases every node the Hat has allocated. The Hat must not be
// used after Close.
func (h *Hat) Close() {
	h.radix.Reset()
	h.bucket.Reset()
	h.pail.Reset()
	h.array.Reset()
	h.root = nil
	h.count = 0

	debug.Log(nil, "close", "released")
}

// Len returns the number of keys currently stored.
func (h *Hat) Len() int { return h.count }

// Data allocates amt bytes of zeroed, caller-owned scratch space. The
// Hat does not track or free it; Data exists only so code built on this
// package does not need a separate allocator for data it wants to
// associate with a Hat's lifetime.
func (h *Hat) Data(amt int) []byte {
	return make([]byte, amt)
}

// Stats returns a snapshot of this Hat's instrumentation counters.
func (h *Hat) Stats() Stats { return h.stats }

// guard asserts that the calling goroutine matches the goroutine that made
// the Hat's previous call, in debug builds only. It is a diagnostic aid for
// the single-goroutine-at-a-time contract, not an enforced lock: in
// non-debug builds it is entirely compiled away.
func (h *Hat) guard() {
	if !debug.Enabled {
		return
	}

	cur := routineGoid()
	prev := h.owner.Get()

	debug.Assert(*prev == 0 || *prev == cur,
		"hattrie: Hat accessed from goroutine %d, previously used from %d", cur, *prev)

	*prev = cur
}

// triple computes the root-array index for key, consuming up to bootlvl
// leading bytes of key and reporting how many bytes it consumed.
// Bytes with the high bit set fold into digit 0, the same fold applied at
// every per-byte radix descent in this package (see radix.go).
func (h *Hat) triple(key []byte) (idx, consumed int) {
	for i := 0; i < h.bootlvl; i++ {
		idx *= 128
		if consumed < len(key) {
			idx += radixDigit(key[consumed])
			consumed++
		}
	}

	return idx, consumed
}
