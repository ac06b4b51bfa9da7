package hattrie

import "math/rand"

// qsortInsertionThreshold is the partition size at or below which the
// ternary quicksort switches to a stable insertion sort.
const qsortInsertionThreshold = 10

// sortByte returns the byte of r.key at depth o, or 0 if the key is too
// short to have one. A record that runs out of bytes before depth o is
// treated as holding a literal zero byte there; this is indistinguishable
// from a real zero byte at that position, a limitation inherited from the
// hash-trie's key layout rather than one this implementation introduces.
func sortByte(r sortRecord, o int) byte {
	if o >= len(r.key) {
		return 0
	}

	return r.key[o]
}

// quicksort performs Sedgewick's three-way partitioning quicksort over
// recs, comparing records by the byte at depth o. Equal-to-pivot records
// recurse with a depth of o+1; at or below the insertion threshold it
// falls back to a stable insertion sort comparing whole key suffixes from o.
func quicksort(recs []sortRecord, o int) {
	n := len(recs)
	if n <= 1 {
		return
	}

	if n <= qsortInsertionThreshold {
		insertionSort(recs, o)

		return
	}

	pivot := sortByte(recs[rand.Intn(n)], o) //nolint:gosec // dispatch only, not security sensitive

	lt, i, gt := 0, 0, n-1

	for i <= gt {
		switch b := sortByte(recs[i], o); {
		case b < pivot:
			recs[lt], recs[i] = recs[i], recs[lt]
			lt++
			i++

		case b > pivot:
			recs[i], recs[gt] = recs[gt], recs[i]
			gt--

		default:
			i++
		}
	}

	quicksort(recs[:lt], o)
	quicksort(recs[gt+1:], o)

	mid := recs[lt : gt+1]
	if hasByteAt(mid, o) {
		quicksort(mid, o+1)
	}
}

// hasByteAt reports whether any record in recs has a real byte at depth
// o, as opposed to every record already being exhausted there. Recursing
// deeper when nothing does would re-partition an already-indistinguishable
// group forever.
func hasByteAt(recs []sortRecord, o int) bool {
	for _, r := range recs {
		if len(r.key) > o {
			return true
		}
	}

	return false
}

// insertionSort stably sorts recs by comparing full key suffixes starting
// at depth o.
func insertionSort(recs []sortRecord, o int) {
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && compareFrom(recs[j-1], recs[j], o) > 0; j-- {
			recs[j-1], recs[j] = recs[j], recs[j-1]
		}
	}
}

// compareFrom lexicographically compares a and b starting at depth o,
// treating exhausted keys as holding zero bytes from that point on.
func compareFrom(a, b sortRecord, o int) int {
	for i := o; i < len(a.key) || i < len(b.key); i++ {
		var ab, bb int

		if i < len(a.key) {
			ab = int(a.key[i])
		}

		if i < len(b.key) {
			bb = int(b.key[i])
		}

		if ab != bb {
			return ab - bb
		}
	}

	return 0
}
