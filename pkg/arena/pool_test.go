//go:build go1.22

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type rec struct {
	a, b int64
}

func TestPoolNewAcrossSegments(t *testing.T) {
	var p Pool[rec]

	ids := make([]ID, segmentLen+10)
	for i := range ids {
		ids[i] = p.New()
		p.At(ids[i]).a = int64(i)
	}

	require.Len(t, p.segs, 2)
	require.Equal(t, segmentLen+10, p.Len())

	for i, id := range ids {
		require.Equal(t, int64(i), p.At(id).a)
	}
}

func TestPoolFreeIsReused(t *testing.T) {
	var p Pool[rec]

	a := p.New()
	p.At(a).a = 42

	p.Free(a)
	require.Equal(t, 0, p.Len())

	b := p.New()
	require.Equal(t, a, b, "freed id should be recycled before growing")
	require.Equal(t, int64(0), p.At(b).a, "reused element must be zeroed")
}

func TestPoolReset(t *testing.T) {
	var p Pool[rec]

	for i := 0; i < 5; i++ {
		p.New()
	}

	p.Reset()
	require.Equal(t, 0, p.Len())
	require.Nil(t, p.segs)
	require.Nil(t, p.free)
}
