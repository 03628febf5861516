package dictionary

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
	"golang.org/x/text/unicode/norm"
)

// Entry is a word with its base frequency.
type Entry struct {
	Word      string
	Frequency int
}

// Builder compiles a wordlist into a blob.
// Words are NFC normalised; adding a word twice keeps the higher frequency.
type Builder struct {
	words   *patricia.Trie
	skipped int
}

// buildNode is the in-memory trie the blob is laid out from.
type buildNode struct {
	code     uint16
	terminal bool
	freq     int
	children []*buildNode
	group    int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{words: patricia.NewTrie()}
}

// Add adds word with freq, clamped to [0, MaxFrequency].
func (b *Builder) Add(word string, freq int) *Builder {
	word = norm.NFC.String(strings.TrimSpace(word))
	if word == "" || strings.ContainsRune(word, 0) {
		b.skipped++
		return b
	}
	freq = max(0, min(freq, MaxFrequency))

	key := patricia.Prefix(word)
	if existing := b.words.Get(key); existing != nil && existing.(int) >= freq {
		return b
	}
	b.words.Set(key, freq)
	return b
}

// AddEntries adds every entry.
func (b *Builder) AddEntries(entries []Entry) *Builder {
	for _, e := range entries {
		b.Add(e.Word, e.Frequency)
	}
	return b
}

// Entries returns the accumulated entries sorted by word.
func (b *Builder) Entries() []Entry {
	var entries []Entry
	_ = b.words.Visit(func(p patricia.Prefix, item patricia.Item) error {
		entries = append(entries, Entry{Word: string(p), Frequency: item.(int)})
		return nil
	})
	slices.SortFunc(entries, func(a, b Entry) int {
		return slices.Compare(utf16.Encode([]rune(a.Word)), utf16.Encode([]rune(b.Word)))
	})
	return entries
}

// Build lays out the accumulated words as a version 1 blob.
func (b *Builder) Build() ([]byte, error) {
	entries := b.Entries()
	if b.skipped > 0 {
		log.Warnf("Skipped %d empty or invalid words", b.skipped)
	}

	root := &buildNode{}
	maxFreq := 0
	for _, e := range entries {
		insertWord(root, utf16.Encode([]rune(e.Word)), e.Frequency)
		maxFreq = max(maxFreq, e.Frequency)
	}

	// Pre-order layout: a group is placed before all of its descendants, so
	// every child address points forward.
	cursor := headerSize
	var layout func(n *buildNode) error
	layout = func(n *buildNode) error {
		if len(n.children) > MaxGroupSize {
			return fmt.Errorf("node has %d children, limit is %d", len(n.children), MaxGroupSize)
		}
		n.group = cursor
		cursor += groupSize(n.children)
		for _, c := range n.children {
			if len(c.children) > 0 {
				if err := layout(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := layout(root); err != nil {
		return nil, err
	}
	if cursor > MaxBlobSize {
		return nil, fmt.Errorf("dictionary of %d bytes exceeds %d byte limit", cursor, MaxBlobSize)
	}

	buf := make([]byte, 0, cursor)
	buf = append(buf, magic[:]...)
	buf = append(buf, Version, 0, byte(maxFreq), 0)

	var emit func(n *buildNode)
	emit = func(n *buildNode) {
		buf = appendCount(buf, len(n.children))
		for _, c := range n.children {
			rec := Node{Code: c.code, Terminal: c.terminal, Frequency: c.freq}
			if len(c.children) > 0 {
				rec.Children = c.group
			}
			buf = appendNode(buf, rec)
		}
		for _, c := range n.children {
			if len(c.children) > 0 {
				emit(c)
			}
		}
	}
	emit(root)

	log.Debugf("Built dictionary: %d words, %d bytes", len(entries), len(buf))
	return buf, nil
}

// Len returns the number of distinct words added.
func (b *Builder) Len() int {
	n := 0
	_ = b.words.Visit(func(patricia.Prefix, patricia.Item) error {
		n++
		return nil
	})
	return n
}

// insertWord adds word below root. Words must arrive in ascending code order
// so that children are appended already sorted.
func insertWord(root *buildNode, word []uint16, freq int) {
	n := root
	for _, code := range word {
		last := len(n.children) - 1
		if last >= 0 && n.children[last].code == code {
			n = n.children[last]
			continue
		}
		child := &buildNode{code: code}
		n.children = append(n.children, child)
		n = child
	}
	n.terminal = true
	n.freq = freq
}

// groupSize returns the encoded size of a child group.
func groupSize(children []*buildNode) int {
	size := encodedCountSize(len(children))
	for _, c := range children {
		size += encodedCodeSize(c.code)
		if len(c.children) > 0 {
			size += 3
		} else {
			size++
		}
		if c.terminal {
			size++
		}
	}
	return size
}
