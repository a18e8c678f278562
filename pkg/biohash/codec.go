package biohash

import (
	"fmt"
	"strings"
)

// Separator sits between bit tokens in the text encoding.
const Separator = ","

// Encode renders t as one "0"/"1" token per bit joined by Separator, in bit
// order. The output is what gets persisted in the template column.
func Encode(t Template) string {
	if t.n == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(t.n*2 - 1)
	for i := 0; i < t.n; i++ {
		if i > 0 {
			b.WriteString(Separator)
		}
		if t.Bit(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Decode parses the text encoding back into a template of exactly bits bits.
// Tokens may carry surrounding whitespace, and the float spellings "0.0" and
// "1.0" found in older rows are accepted.
func Decode(text string, bits int) (Template, error) {
	if bits <= 0 {
		return Template{}, fmt.Errorf("%w: bit length must be positive, got %d", ErrMalformedTemplate, bits)
	}

	tokens := strings.Split(text, Separator)
	if len(tokens) != bits {
		return Template{}, fmt.Errorf("%w: expected %d tokens, got %d", ErrMalformedTemplate, bits, len(tokens))
	}

	t := New(bits)
	for i, tok := range tokens {
		switch strings.TrimSpace(tok) {
		case "0", "0.0":
		case "1", "1.0":
			t.words[i/wordBits] |= 1 << (uint(i) % wordBits)
		default:
			return Template{}, fmt.Errorf("%w: token %d is %q", ErrMalformedTemplate, i, tok)
		}
	}
	return t, nil
}

// Parse decodes text without a known length, taking the token count as the
// bit length. Stores use it to load templates written at any length; callers
// that enforce a population length should use Decode.
func Parse(text string) (Template, error) {
	if strings.TrimSpace(text) == "" {
		return Template{}, fmt.Errorf("%w: empty template", ErrMalformedTemplate)
	}
	return Decode(text, strings.Count(text, Separator)+1)
}
