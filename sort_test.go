package hattrie

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func recsFromStrings(ss []string) []sortRecord {
	recs := make([]sortRecord, len(ss))
	for i, s := range ss {
		recs[i] = sortRecord{key: []byte(s)}
	}

	return recs
}

func keysOf(recs []sortRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = string(r.key)
	}

	return out
}

func TestQuicksortOrdersLexicographically(t *testing.T) {
	in := []string{"banana", "apple", "cherry", "ab", "a", "abc", "", "app"}
	want := append([]string(nil), in...)
	sort.Strings(want)

	recs := recsFromStrings(in)
	quicksort(recs, 0)

	require.Equal(t, want, keysOf(recs))
}

func TestQuicksortHandlesSharedPrefixesAndExhaustion(t *testing.T) {
	in := []string{"m", "mm", "mmm", "mma", "mz"}
	want := append([]string(nil), in...)
	sort.Strings(want)

	recs := recsFromStrings(in)
	quicksort(recs, 0)

	require.Equal(t, want, keysOf(recs))
}

// TestQuicksortLargeRandomSet keeps key bytes non-zero: the sorter treats
// a key exhausted at the current depth as holding byte 0 there, so a pair
// like "m" and "m\x00" has no defined relative order.
func TestQuicksortLargeRandomSet(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	in := make([]string, 5000)
	for i := range in {
		n := 1 + r.Intn(20)
		b := make([]byte, n)

		for j := range b {
			b[j] = byte(1 + r.Intn(255))
		}

		in[i] = string(b)
	}

	want := append([]string(nil), in...)
	sort.Strings(want)

	recs := recsFromStrings(in)
	quicksort(recs, 0)

	require.Equal(t, want, keysOf(recs))
}

func TestInsertionSortStable(t *testing.T) {
	recs := recsFromStrings([]string{"b", "a", "a", "c", "a"})
	recs[1].aux = []byte{1}
	recs[2].aux = []byte{2}
	recs[4].aux = []byte{3}

	insertionSort(recs, 0)

	require.Equal(t, []string{"a", "a", "a", "b", "c"}, keysOf(recs))
	require.Equal(t, [][]byte{{1}, {2}, {3}}, [][]byte{recs[0].aux, recs[1].aux, recs[2].aux})
}

func TestCompareFromExhaustedTreatedAsZero(t *testing.T) {
	a := sortRecord{key: []byte("m")}
	b := sortRecord{key: []byte("mm")}

	require.Less(t, compareFrom(a, b, 0), 0)
	require.Greater(t, compareFrom(b, a, 0), 0)
	require.Equal(t, 0, compareFrom(a, a, 0))
}

func TestSortByteExhaustedIsZero(t *testing.T) {
	r := sortRecord{key: []byte("ab")}

	require.Equal(t, byte('a'), sortByte(r, 0))
	require.Equal(t, byte('b'), sortByte(r, 1))
	require.Equal(t, byte(0), sortByte(r, 2))
	require.Equal(t, byte(0), sortByte(r, 100))
}

func TestQuicksortMatchesBytesCompare(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	in := make([]string, 500)
	for i := range in {
		n := r.Intn(6)
		b := make([]byte, n)

		for j := range b {
			b[j] = byte('a' + r.Intn(3))
		}

		in[i] = string(b)
	}

	recs := recsFromStrings(in)
	quicksort(recs, 0)

	for i := 1; i < len(recs); i++ {
		require.True(t, bytes.Compare(recs[i-1].key, recs[i].key) <= 0)
	}
}
