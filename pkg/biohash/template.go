// Package biohash holds the binary biometric template type together with its
// text codec and the Hamming distance used to compare templates.
package biohash

import "errors"

// DefaultBits is the template length of the reference deployment.
const DefaultBits = 128

var (
	ErrMalformedTemplate = errors.New("biohash: malformed template")
	ErrDimensionMismatch = errors.New("biohash: dimension mismatch")
)

const wordBits = 64

// Template is a fixed-length bit vector. Bit i lives in words[i/64] at
// position i%64; bits past Len are always zero so word-wise comparisons stay
// exact.
type Template struct {
	words []uint64
	n     int
}

// New returns an all-zero template of n bits.
func New(n int) Template {
	if n < 0 {
		n = 0
	}
	return Template{
		words: make([]uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// FromBits builds a template from a slice of booleans, index order preserved.
func FromBits(bits []bool) Template {
	t := New(len(bits))
	for i, b := range bits {
		if b {
			t.words[i/wordBits] |= 1 << (uint(i) % wordBits)
		}
	}
	return t
}

// Len returns the number of bits in the template.
func (t Template) Len() int { return t.n }

// IsZero reports whether t is the zero value (no bits at all).
func (t Template) IsZero() bool { return t.n == 0 }

// Bit reports whether bit i is set. It panics when i is out of range.
func (t Template) Bit(i int) bool {
	t.check(i)
	return t.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Set assigns bit i. It panics when i is out of range.
func (t *Template) Set(i int, v bool) {
	t.check(i)
	mask := uint64(1) << (uint(i) % wordBits)
	if v {
		t.words[i/wordBits] |= mask
	} else {
		t.words[i/wordBits] &^= mask
	}
}

// Flip returns a copy of t with the given bit positions inverted.
func (t Template) Flip(positions ...int) Template {
	out := t.Clone()
	for _, i := range positions {
		out.check(i)
		out.words[i/wordBits] ^= 1 << (uint(i) % wordBits)
	}
	return out
}

// Bits expands the template into one boolean per bit.
func (t Template) Bits() []bool {
	out := make([]bool, t.n)
	for i := range out {
		out[i] = t.Bit(i)
	}
	return out
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	words := make([]uint64, len(t.words))
	copy(words, t.words)
	return Template{words: words, n: t.n}
}

// Equal reports whether both templates have the same length and bits.
func (t Template) Equal(o Template) bool {
	if t.n != o.n {
		return false
	}
	for i := range t.words {
		if t.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// String returns the text encoding of the template.
func (t Template) String() string { return Encode(t) }

func (t Template) check(i int) {
	if i < 0 || i >= t.n {
		panic("biohash: bit index out of range")
	}
}
