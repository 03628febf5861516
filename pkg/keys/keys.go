// Package keys models what a single key tap could stand for: the key that was
// hit plus the nearby keys a fat finger may have meant.
package keys

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf16"
)

// ErrInvalidAlternates is returned for an out of range alternate count or stride.
var ErrInvalidAlternates = errors.New("keys: invalid alternate count")

// Quote is the apostrophe code, skipped in stored words when it was not typed.
const Quote = '\''

// Tap is one keystroke: the code of the key that was hit and the codes of
// keys close enough to have been meant instead, most likely first.
type Tap struct {
	Primary    uint16
	Alternates []uint16
}

// Candidates appends the codes to try for t to dst: the primary code first,
// then at most maxAlternatives alternates in their given order. Zero codes are
// dropped.
func (t Tap) Candidates(maxAlternatives int, dst []uint16) ([]uint16, error) {
	if maxAlternatives < 0 {
		return dst, fmt.Errorf("%w: %d", ErrInvalidAlternates, maxAlternatives)
	}
	return t.AppendCandidates(maxAlternatives, dst), nil
}

// AppendCandidates is Candidates for a maxAlternatives already known to be
// valid. A negative count offers the primary code only.
func (t Tap) AppendCandidates(maxAlternatives int, dst []uint16) []uint16 {
	if t.Primary != 0 {
		dst = append(dst, t.Primary)
	}
	for i, code := range t.Alternates {
		if i >= maxAlternatives {
			break
		}
		if code != 0 {
			dst = append(dst, code)
		}
	}
	return dst
}

// Matches reports whether a typed code selects the stored code.
// Typed codes match stored codes exactly or the stored code's lower case form.
func Matches(typed, stored uint16) bool {
	return typed == stored || typed == Fold(stored)
}

// Fold returns the lower case form of a code unit.
// Surrogate halves are returned unchanged.
func Fold(code uint16) uint16 {
	if code < 0x80 {
		if 'A' <= code && code <= 'Z' {
			return code + 'a' - 'A'
		}
		return code
	}
	if utf16.IsSurrogate(rune(code)) {
		return code
	}
	lower := unicode.ToLower(rune(code))
	if lower > 0xFFFF {
		return code
	}
	return uint16(lower)
}

// FromString returns one tap per UTF-16 code unit of s, without alternates.
func FromString(s string) []Tap {
	units := utf16.Encode([]rune(s))
	taps := make([]Tap, len(units))
	for i, u := range units {
		taps[i] = Tap{Primary: u}
	}
	return taps
}

// Unpack converts the flat code layout used across the native boundary:
// arraySize taps of stride slots each, the primary code first, alternates
// following and unused slots zero.
func Unpack(codes []int, arraySize, stride int) ([]Tap, error) {
	if stride < 1 {
		return nil, fmt.Errorf("%w: stride %d", ErrInvalidAlternates, stride)
	}
	if arraySize < 0 || arraySize*stride > len(codes) {
		return nil, fmt.Errorf("%w: %d taps of %d slots do not fit %d codes",
			ErrInvalidAlternates, arraySize, stride, len(codes))
	}

	taps := make([]Tap, arraySize)
	for i := range taps {
		slots := codes[i*stride : (i+1)*stride]
		taps[i].Primary = clampCode(slots[0])
		for _, c := range slots[1:] {
			if c <= 0 {
				break
			}
			taps[i].Alternates = append(taps[i].Alternates, clampCode(c))
		}
	}
	return taps, nil
}

// Pack is the inverse of Unpack. Alternates beyond stride-1 are dropped.
func Pack(taps []Tap, stride int) []int {
	codes := make([]int, len(taps)*stride)
	for i, t := range taps {
		slots := codes[i*stride : (i+1)*stride]
		slots[0] = int(t.Primary)
		for j, c := range t.Alternates {
			if j+1 >= stride {
				break
			}
			slots[j+1] = int(c)
		}
	}
	return codes
}

func clampCode(c int) uint16 {
	if c < 0 || c > 0xFFFF {
		return 0
	}
	return uint16(c)
}
