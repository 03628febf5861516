package utils

import (
	"sync"
	"unicode"
	"unicode/utf16"
)

var capitalsPool = sync.Pool{
	New: func() any {
		return &Capitals{positions: make([]int, 0, 4)}
	},
}

// Capitals records which code units of a typed input were upper case, so
// suggestions found case-insensitively can be shown the way they were typed.
type Capitals struct {
	positions []int
	all       bool
}

// ProcessCapitals scans input for upper case code units. It returns nil when
// there are none. Release the result once it is no longer needed.
func ProcessCapitals(input string) *Capitals {
	units := utf16.Encode([]rune(input))
	info := capitalsPool.Get().(*Capitals)
	info.positions = info.positions[:0]
	letters := 0
	for i, u := range units {
		r := rune(u)
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			info.positions = append(info.positions, i)
		}
	}
	if len(info.positions) == 0 {
		capitalsPool.Put(info)
		return nil
	}
	info.all = letters > 1 && len(info.positions) == letters
	return info
}

// Apply upper cases word at the recorded positions, or entirely when every
// typed letter was upper case. A nil receiver returns word unchanged.
func (c *Capitals) Apply(word string) string {
	if c == nil {
		return word
	}
	units := utf16.Encode([]rune(word))
	if c.all {
		for i, u := range units {
			units[i] = upper(u)
		}
	} else {
		for _, pos := range c.positions {
			if pos < len(units) {
				units[pos] = upper(units[pos])
			}
		}
	}
	return string(utf16.Decode(units))
}

// Release returns c to the pool.
func (c *Capitals) Release() {
	if c != nil {
		capitalsPool.Put(c)
	}
}

func upper(u uint16) uint16 {
	if utf16.IsSurrogate(rune(u)) {
		return u
	}
	r := unicode.ToUpper(rune(u))
	if r > 0xFFFF {
		return u
	}
	return uint16(r)
}
