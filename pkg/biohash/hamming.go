package biohash

import (
	"fmt"
	"math/bits"
)

// Hamming returns the number of positions at which a and b differ.
func Hamming(a, b Template) (int, error) {
	if a.n != b.n {
		return 0, fmt.Errorf("%w: %d vs %d bits", ErrDimensionMismatch, a.n, b.n)
	}

	d := 0
	for i := range a.words {
		d += bits.OnesCount64(a.words[i] ^ b.words[i])
	}
	return d, nil
}
