package suggest

import "unicode/utf16"

// Output is a caller owned, fixed capacity result buffer.
//
// Word i occupies Chars[i*WordLength:(i+1)*WordLength], zero terminated when
// shorter than the slot; its score is Frequencies[i]. Words longer than a slot
// are truncated. Nothing is ever written past the slices' lengths, and the
// engine keeps no reference to the buffer once a query returns.
type Output struct {
	Chars       []uint16
	Frequencies []int
	// WordLength is the slot width. Zero adopts the query's MaxWordLength.
	WordLength int

	n int
}

// NewOutput allocates an Output holding maxWords slots of wordLength code units.
func NewOutput(maxWords, wordLength int) *Output {
	return &Output{
		Chars:       make([]uint16, maxWords*wordLength),
		Frequencies: make([]int, maxWords),
		WordLength:  wordLength,
	}
}

// Len returns the number of words written by the last query.
func (o *Output) Len() int {
	return o.n
}

// capacity returns how many whole slots the buffer holds, using
// wordLength when the Output has no slot width of its own.
func (o *Output) capacity(wordLength int) int {
	width := o.WordLength
	if width <= 0 {
		width = wordLength
	}
	if width <= 0 {
		return 0
	}
	return min(len(o.Frequencies), len(o.Chars)/width)
}

// Reset forgets the previous results without touching the buffers.
func (o *Output) Reset() {
	o.n = 0
}

// Slot returns the code units of word i without the zero padding.
func (o *Output) Slot(i int) []uint16 {
	slot := o.Chars[i*o.WordLength : (i+1)*o.WordLength]
	for k, c := range slot {
		if c == 0 {
			return slot[:k]
		}
	}
	return slot
}

// Word decodes word i.
func (o *Output) Word(i int) string {
	return string(utf16.Decode(o.Slot(i)))
}

// Suggestions copies the written results out of the buffer.
func (o *Output) Suggestions() []Suggestion {
	out := make([]Suggestion, o.n)
	for i := range out {
		out[i] = Suggestion{Word: o.Word(i), Frequency: o.Frequencies[i]}
	}
	return out
}
