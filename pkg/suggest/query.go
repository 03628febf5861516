package suggest

import (
	"errors"
	"fmt"

	"github.com/bastiangx/tapdict/pkg/keys"
)

// ErrInvalidQuery is returned for queries whose limits are out of range.
var ErrInvalidQuery = errors.New("suggest: invalid query")

const (
	// NoSkip disables the omitted keystroke correction.
	NoSkip = -1

	// MaxWordLength is the longest word, in UTF-16 code units, a query may ask for.
	MaxWordLength = 48
	// MaxWordsLimit caps the results Suggest allocates for. Search is bounded
	// by its Output instead.
	MaxWordsLimit = 256

	DefaultMaxWords        = 18
	DefaultMaxWordLength   = 32
	DefaultMaxAlternatives = 8
)

// Weights are the scoring multipliers of a loaded dictionary.
type Weights struct {
	// TypedLetter multiplies the score once per tap matched by its primary code.
	TypedLetter int
	// FullWord multiplies the score of words that consume every tap without a skip.
	FullWord int
}

// Query is one suggestion request. Use NewQuery for the defaults; the zero
// value of SkipPos asks for tap 0 to be skippable.
type Query struct {
	Taps []keys.Tap

	// MaxWords caps the number of results.
	MaxWords int
	// MaxWordLength caps suggested words, in UTF-16 code units.
	MaxWordLength int
	// MaxAlternatives caps the alternates tried per tap. 0 tries primaries only.
	MaxAlternatives int
	// SkipPos is a tap index that may be treated as never typed, or NoSkip.
	SkipPos int
	// MaxCorrections bounds how many taps may be matched by an alternate.
	// 0 derives the bound from the input length, negative allows none.
	MaxCorrections int
	// Completions keeps descending once every tap is consumed and suggests
	// longer words starting with the matched prefix.
	Completions bool
}

// NewQuery returns a query for taps with the default limits and no skip.
func NewQuery(taps []keys.Tap) Query {
	return Query{
		Taps:            taps,
		MaxWords:        DefaultMaxWords,
		MaxWordLength:   DefaultMaxWordLength,
		MaxAlternatives: DefaultMaxAlternatives,
		SkipPos:         NoSkip,
	}
}

// Validate checks the query limits.
func (q *Query) Validate() error {
	switch {
	case q.MaxWords < 0:
		return fmt.Errorf("%w: max words %d", ErrInvalidQuery, q.MaxWords)
	case q.MaxWordLength < 1 || q.MaxWordLength > MaxWordLength:
		return fmt.Errorf("%w: max word length %d not in [1, %d]", ErrInvalidQuery, q.MaxWordLength, MaxWordLength)
	case q.MaxAlternatives < 0:
		return fmt.Errorf("%w: %w: %d", ErrInvalidQuery, keys.ErrInvalidAlternates, q.MaxAlternatives)
	case q.SkipPos < NoSkip:
		return fmt.Errorf("%w: skip position %d", ErrInvalidQuery, q.SkipPos)
	}
	return nil
}

// correctionLimit returns the alternate budget for the query.
func (q *Query) correctionLimit() int {
	switch {
	case q.MaxCorrections < 0:
		return 0
	case q.MaxCorrections > 0:
		return q.MaxCorrections
	case len(q.Taps) < 5:
		return 2
	default:
		return len(q.Taps) / 2
	}
}
