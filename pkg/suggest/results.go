package suggest

import "slices"

// Results is a fixed capacity set of candidates kept in rank order: higher
// score first, then the shorter word, then the lexically smaller one.
// A word is held at most once, with the best score it was offered.
type Results struct {
	chars  []uint16
	lens   []int
	scores []int
	width  int
	limit  int
	n      int
}

// NewResults returns an empty set for at most limit words of width code units.
func NewResults(limit, width int) *Results {
	r := &Results{}
	r.reset(limit, width)
	return r
}

// reset empties the set, reusing its arrays when they are large enough.
func (r *Results) reset(limit, width int) {
	limit, width = max(limit, 0), max(width, 0)
	if cap(r.scores) < limit {
		r.scores = make([]int, limit)
		r.lens = make([]int, limit)
	}
	if cap(r.chars) < limit*width {
		r.chars = make([]uint16, limit*width)
	}
	r.scores = r.scores[:limit]
	r.lens = r.lens[:limit]
	r.chars = r.chars[:limit*width]
	r.width = width
	r.limit = limit
	r.n = 0
}

// Len returns the number of held words.
func (r *Results) Len() int {
	return r.n
}

// Full reports whether adding a word requires evicting one.
func (r *Results) Full() bool {
	return r.n >= r.limit
}

// Lowest returns the score of the last ranked word, 0 when empty.
func (r *Results) Lowest() int {
	if r.n == 0 {
		return 0
	}
	return r.scores[r.n-1]
}

// Word returns the code units of the i-th ranked word.
// The slice aliases internal storage and is only valid until the next Add.
func (r *Results) Word(i int) []uint16 {
	return r.chars[i*r.width : i*r.width+r.lens[i]]
}

// Score returns the score of the i-th ranked word.
func (r *Results) Score(i int) int {
	return r.scores[i]
}

// Add offers word with score and reports whether the set changed.
// Words longer than the set width are rejected.
func (r *Results) Add(word []uint16, score int) bool {
	if r.limit == 0 || len(word) > r.width {
		return false
	}

	if k := r.index(word); k >= 0 {
		if score <= r.scores[k] {
			return false
		}
		r.remove(k)
	}

	if r.n == r.limit {
		last := r.n - 1
		if !ranksBefore(word, score, r.Word(last), r.scores[last]) {
			return false
		}
		r.n--
	}

	at := r.n
	for i := 0; i < r.n; i++ {
		if ranksBefore(word, score, r.Word(i), r.scores[i]) {
			at = i
			break
		}
	}

	// shift the tail down one slot
	copy(r.chars[(at+1)*r.width:(r.n+1)*r.width], r.chars[at*r.width:r.n*r.width])
	copy(r.scores[at+1:r.n+1], r.scores[at:r.n])
	copy(r.lens[at+1:r.n+1], r.lens[at:r.n])

	copy(r.chars[at*r.width:], word)
	r.lens[at] = len(word)
	r.scores[at] = score
	r.n++
	return true
}

// index returns the rank of word, or -1.
func (r *Results) index(word []uint16) int {
	for i := 0; i < r.n; i++ {
		if r.lens[i] == len(word) && slices.Equal(r.Word(i), word) {
			return i
		}
	}
	return -1
}

// remove drops the i-th ranked word.
func (r *Results) remove(i int) {
	copy(r.chars[i*r.width:], r.chars[(i+1)*r.width:r.n*r.width])
	copy(r.scores[i:], r.scores[i+1:r.n])
	copy(r.lens[i:], r.lens[i+1:r.n])
	r.n--
}

// ranksBefore reports whether candidate a ranks ahead of candidate b.
func ranksBefore(a []uint16, aScore int, b []uint16, bScore int) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return slices.Compare(a, b) < 0
}

// Emit writes the ranked words into out and returns the number written.
func (r *Results) Emit(out *Output) int {
	out.Reset()
	width := out.WordLength
	if width <= 0 {
		width = r.width
		out.WordLength = width
	}
	if width <= 0 {
		return 0
	}

	count := min(r.n, len(out.Frequencies), len(out.Chars)/width)
	for i := 0; i < count; i++ {
		slot := out.Chars[i*width : (i+1)*width]
		k := copy(slot, r.Word(i))
		clear(slot[k:])
		out.Frequencies[i] = r.scores[i]
	}
	out.n = count
	return count
}
