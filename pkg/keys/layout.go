package keys

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf16"
)

// proximity is the largest centre distance, in key widths, of a neighbour key.
const proximity = 1.25

// Layout is a keyboard proximity model: which keys lie next to each other.
type Layout struct {
	Name      string
	neighbors map[uint16][]uint16
}

var layouts = map[string]*Layout{
	"qwerty": NewLayout("qwerty", []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}, []float64{0, 0.25, 0.75}),
	"qwertz": NewLayout("qwertz", []string{"qwertzuiopü", "asdfghjklöä", "yxcvbnm"}, []float64{0, 0.25, 0.75}),
	"azerty": NewLayout("azerty", []string{"azertyuiop", "qsdfghjklm", "wxcvbn"}, []float64{0, 0.25, 0.75}),
}

// QWERTY is the default layout.
var QWERTY = layouts["qwerty"]

// NewLayout builds a layout from its letter rows and the horizontal offset of
// each row in key widths.
func NewLayout(name string, rows []string, offsets []float64) *Layout {
	type key struct {
		code uint16
		x, y float64
	}
	var all []key
	for r, row := range rows {
		offset := 0.0
		if r < len(offsets) {
			offset = offsets[r]
		}
		for c, ch := range []rune(row) {
			all = append(all, key{code: uint16(ch), x: float64(c) + offset, y: float64(r)})
		}
	}

	l := &Layout{Name: name, neighbors: make(map[uint16][]uint16, len(all))}
	for _, k := range all {
		type near struct {
			code uint16
			dist float64
		}
		var nearby []near
		for _, o := range all {
			if o.code == k.code {
				continue
			}
			if d := math.Hypot(k.x-o.x, k.y-o.y); d <= proximity {
				nearby = append(nearby, near{o.code, d})
			}
		}
		sort.Slice(nearby, func(i, j int) bool {
			if nearby[i].dist != nearby[j].dist {
				return nearby[i].dist < nearby[j].dist
			}
			return nearby[i].code < nearby[j].code
		})
		codes := make([]uint16, len(nearby))
		for i, n := range nearby {
			codes[i] = n.code
		}
		l.neighbors[k.code] = codes
	}
	return l
}

// LayoutByName returns a built-in layout.
func LayoutByName(name string) (*Layout, error) {
	if l, ok := layouts[strings.ToLower(name)]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("unknown keyboard layout %q", name)
}

// Neighbors returns the keys adjacent to code, nearest first.
func (l *Layout) Neighbors(code uint16) []uint16 {
	return l.neighbors[Fold(code)]
}

// Taps turns a typed word into taps whose alternates are the adjacent keys,
// at most maxAlternatives per tap.
func (l *Layout) Taps(word string, maxAlternatives int) []Tap {
	units := utf16.Encode([]rune(word))
	taps := make([]Tap, len(units))
	for i, u := range units {
		primary := Fold(u)
		near := l.Neighbors(primary)
		if len(near) > maxAlternatives {
			near = near[:max(0, maxAlternatives)]
		}
		taps[i] = Tap{Primary: primary, Alternates: near}
	}
	return taps
}
