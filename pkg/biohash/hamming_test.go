package biohash_test

import (
	"math/rand/v2"
	"testing"

	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/stretchr/testify/require"
)

func TestHammingProperties(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewPCG(7, 11))

	for range 200 {
		a := randomTemplate(r, biohash.DefaultBits)
		b := randomTemplate(r, biohash.DefaultBits)

		ab, err := biohash.Hamming(a, b)
		require.NoError(t, err)
		ba, err := biohash.Hamming(b, a)
		require.NoError(t, err)
		aa, err := biohash.Hamming(a, a)
		require.NoError(t, err)

		require.Equal(t, ab, ba)
		require.Zero(t, aa)
		require.LessOrEqual(t, ab, a.Len())
		require.GreaterOrEqual(t, ab, 0)
	}
}

func TestHammingCountsFlippedBits(t *testing.T) {
	base := biohash.New(biohash.DefaultBits)

	d, err := biohash.Hamming(base, base.Flip(0, 5, 63, 64, 100, 127))
	require.NoError(t, err)
	require.Equal(t, 6, d)

	all := make([]int, biohash.DefaultBits)
	for i := range all {
		all[i] = i
	}
	d, err = biohash.Hamming(base, base.Flip(all...))
	require.NoError(t, err)
	require.Equal(t, biohash.DefaultBits, d)
}

func TestHammingDimensionMismatch(t *testing.T) {
	_, err := biohash.Hamming(biohash.New(128), biohash.New(64))
	require.ErrorIs(t, err, biohash.ErrDimensionMismatch)
}
