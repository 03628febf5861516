// Package suggest is the core, searching a dictionary trie for the words a
// noisy sequence of key taps could have meant and ranking them.
//
// The search walks the trie depth first, one tap per level. At every level it
// follows each child whose code is offered by the tap: the primary code
// weighs typedLetterMultiplier, a case folded primary weighs 1, and an
// alternate weighs 1 and spends one unit of the correction budget. A word
// consuming every tap without a skip gets the fullWordMultiplier bonus:
//
//	score = frequency × Π tap weights × (fullWordMultiplier if full)
//
// The word spelled by the primary codes themselves, when present, is further
// multiplied by maxFrequency+1 so that it outranks every other candidate.
// Other scores stay below the saturation limit so that even a saturated exact
// word comes first.
//
// Once the result set is full, branches whose best reachable score is below
// the lowest held score are abandoned.
package suggest

import (
	"math"
	"sync"

	"github.com/bastiangx/tapdict/pkg/dictionary"
	"github.com/bastiangx/tapdict/pkg/keys"
)

// scoreLimit caps every score and intermediate weight.
const scoreLimit = math.MaxInt32

// inexactLimit caps the score of any word other than the exact input.
const inexactLimit = scoreLimit - 1

// Suggestion is a ranked word.
type Suggestion struct {
	Word      string
	Frequency int
}

// scratch is the per query working state, pooled so that a warm query does
// not allocate.
type scratch struct {
	word    []uint16
	codes   []uint16
	bounds  []int
	pow     []int64
	results Results
}

var scratchPool = sync.Pool{
	New: func() any {
		return &scratch{}
	},
}

type searcher struct {
	store       *dictionary.Store
	taps        []keys.Tap
	codes       []uint16
	bounds      []int
	pow         []int64
	word        []uint16
	results     *Results
	typed       int64
	full        int64
	maxFreq     int64
	exactBonus  int64
	skip        int
	maxDepth    int
	maxEdits    int
	completions bool
}

// Search runs q against store and writes the ranked words into out.
// A nil store yields no results.
func Search(store *dictionary.Store, w Weights, q Query, out *Output) (int, error) {
	if out == nil {
		return 0, nil
	}
	out.Reset()
	if store == nil {
		return 0, nil
	}
	if err := q.Validate(); err != nil {
		return 0, err
	}
	limit := min(q.MaxWords, out.capacity(q.MaxWordLength))
	if len(q.Taps) == 0 || limit == 0 {
		return 0, nil
	}

	sc := scratchPool.Get().(*scratch)
	defer scratchPool.Put(sc)

	s := sc.prepare(store, w, q, limit)
	s.walk(store.Root(), 0, 0, 1, 0, true, false)
	if s.skip == 0 && len(s.taps) > 1 {
		s.walk(store.Root(), 0, 1, 1, 0, false, true)
	}
	return s.results.Emit(out), nil
}

// Suggest runs q and returns the results as decoded words, at most
// MaxWordsLimit of them.
func Suggest(store *dictionary.Store, w Weights, q Query) ([]Suggestion, error) {
	out := NewOutput(min(max(q.MaxWords, 0), MaxWordsLimit), max(q.MaxWordLength, 1))
	if _, err := Search(store, w, q, out); err != nil {
		return nil, err
	}
	return out.Suggestions(), nil
}

// prepare sizes the scratch buffers for q and returns a searcher over them.
func (sc *scratch) prepare(store *dictionary.Store, w Weights, q Query, limit int) searcher {
	if cap(sc.word) < q.MaxWordLength {
		sc.word = make([]uint16, q.MaxWordLength)
	}
	sc.word = sc.word[:q.MaxWordLength]

	sc.codes = sc.codes[:0]
	sc.bounds = append(sc.bounds[:0], 0)
	for _, tap := range q.Taps {
		sc.codes = tap.AppendCandidates(q.MaxAlternatives, sc.codes)
		sc.bounds = append(sc.bounds, len(sc.codes))
	}

	typed := int64(max(w.TypedLetter, 1))
	sc.pow = append(sc.pow[:0], 1)
	for i := 1; i <= len(q.Taps); i++ {
		sc.pow = append(sc.pow, mulSat(sc.pow[i-1], typed))
	}

	sc.results.reset(limit, q.MaxWordLength)

	skip := q.SkipPos
	if skip >= len(q.Taps) {
		skip = NoSkip
	}

	return searcher{
		store:       store,
		taps:        q.Taps,
		codes:       sc.codes,
		bounds:      sc.bounds,
		pow:         sc.pow,
		word:        sc.word,
		results:     &sc.results,
		typed:       typed,
		full:        int64(max(w.FullWord, 1)),
		maxFreq:     int64(store.MaxFrequency()),
		exactBonus:  int64(store.MaxFrequency()) + 1,
		skip:        skip,
		maxDepth:    q.MaxWordLength,
		maxEdits:    q.correctionLimit(),
		completions: q.Completions,
	}
}

// walk matches tap in against the child group at offset group.
// depth is the number of code units already in s.word. exact reports whether
// every code so far is the primary code of its tap, unfolded.
func (s *searcher) walk(group, depth, in int, weight int64, edits int, exact, skipped bool) {
	if depth >= s.maxDepth || s.prune(weight, in, exact) {
		return
	}

	primary := s.taps[in].Primary
	codes := s.codes[s.bounds[in]:s.bounds[in+1]]

	it := s.store.Children(group)
	for {
		n, ok := it.Next()
		if !ok {
			return
		}

		// An untyped apostrophe is stepped over without consuming the tap.
		if n.Code == keys.Quote && primary != keys.Quote {
			if n.HasChildren() {
				s.word[depth] = n.Code
				s.walk(n.Children, depth+1, in, weight, edits, false, skipped)
			}
			continue
		}

		for j, code := range codes {
			if !keys.Matches(code, n.Code) {
				continue
			}
			w, e, x := s.typed, edits, exact
			switch {
			case j > 0 || primary == 0:
				w, e, x = 1, edits+1, false
			case code != n.Code:
				w, x = 1, false
			}
			if e <= s.maxEdits {
				s.word[depth] = n.Code
				s.arrive(n, depth+1, in+1, mulSat(weight, w), e, x, skipped)
			}
			break
		}
	}
}

// arrive handles the node reached after consuming the taps before in.
func (s *searcher) arrive(n dictionary.Node, depth, in int, weight int64, edits int, exact, skipped bool) {
	if in == s.skip && !skipped {
		s.arrive(n, depth, in+1, weight, edits, false, true)
	}

	if in < len(s.taps) {
		if n.HasChildren() {
			s.walk(n.Children, depth, in, weight, edits, exact, skipped)
		}
		return
	}

	if n.Terminal {
		s.results.Add(s.word[:depth], int(s.score(weight, n.Frequency, exact, skipped)))
	}
	if s.completions && n.HasChildren() {
		s.complete(n.Children, depth, weight)
	}
}

// score rates a terminal reached with every tap consumed.
func (s *searcher) score(weight int64, freq int, exact, skipped bool) int64 {
	if exact && !skipped {
		score := mulSat(mulSat(weight, int64(max(freq, 1))), s.full)
		return mulSat(score, s.exactBonus)
	}
	score := mulSat(weight, int64(freq))
	if !skipped {
		score = mulSat(score, s.full)
	}
	return min(score, inexactLimit)
}

// complete suggests every word below group, once all taps are consumed.
func (s *searcher) complete(group, depth int, weight int64) {
	if depth >= s.maxDepth {
		return
	}
	if s.results.Full() && mulSat(weight, s.maxFreq) < int64(s.results.Lowest()) {
		return
	}

	it := s.store.Children(group)
	for {
		n, ok := it.Next()
		if !ok {
			return
		}
		s.word[depth] = n.Code
		if n.Terminal {
			score := min(mulSat(weight, int64(n.Frequency)), inexactLimit)
			s.results.Add(s.word[:depth+1], int(score))
		}
		if n.HasChildren() {
			s.complete(n.Children, depth+1, weight)
		}
	}
}

// prune reports whether no word below the current branch can enter the
// full result set. Ties are kept since the tie-break may still favour them.
func (s *searcher) prune(weight int64, in int, exact bool) bool {
	if !s.results.Full() {
		return false
	}
	best := mulSat(weight, s.pow[len(s.taps)-in])
	if exact {
		best = mulSat(mulSat(mulSat(best, max(s.maxFreq, 1)), s.full), s.exactBonus)
	} else {
		best = mulSat(mulSat(best, s.maxFreq), s.full)
	}
	return best < int64(s.results.Lowest())
}

// mulSat multiplies non-negative a and b, saturating at scoreLimit.
func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > scoreLimit/b {
		return scoreLimit
	}
	return a * b
}
