package hattrie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLenSkip(t *testing.T) {
	require.Equal(t, 1, lenSkip(0))
	require.Equal(t, 1, lenSkip(0x7f))
	require.Equal(t, 2, lenSkip(0x80))
	require.Equal(t, 2, lenSkip(maxKeyLen))
}

func TestEncodeDecodeLenRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 42, 0x7f, 0x80, 0x81, 1000, 0x3fff, maxKeyLen} {
		buf := make([]byte, lenSkip(n))
		written := encodeLen(buf, n)

		require.Equal(t, len(buf), written)

		got, skip := decodeLen(buf)
		require.Equal(t, n, got, "round-trip for %d", n)
		require.Equal(t, len(buf), skip)
	}
}

func TestDecodeLenHighByteShift(t *testing.T) {
	// 300 = 0b1_0010_1100 -> low 7 bits 0x2c | 0x80, high bits 300>>7 = 2
	buf := make([]byte, 2)
	encodeLen(buf, 300)

	require.Equal(t, byte(0x2c|0x80), buf[0])
	require.Equal(t, byte(2), buf[1])

	n, skip := decodeLen(buf)
	require.Equal(t, 300, n)
	require.Equal(t, 2, skip)
}

func TestHashKeyDeterministic(t *testing.T) {
	a := hashKey([]byte("hello world"))
	b := hashKey([]byte("hello world"))
	require.Equal(t, a, b)

	c := hashKey([]byte("hello worlD"))
	require.NotEqual(t, a, c)
}

func TestHashKeyEmpty(t *testing.T) {
	require.Equal(t, uint32(0), hashKey(nil))
}
