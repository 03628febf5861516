/*
Package dictionary owns the serialized word trie consumed by the engine.

A dictionary blob is produced once by the Builder and loaded read-only by Load.
Loading validates every child group of the blob before a Store is returned, so
traversal code working on a Store never has to check bounds. The Store never
mutates its buffer and can be shared by any number of concurrent readers.

	blob, err := dictionary.NewBuilder().Add("hello", 200).Build()
	store, err := dictionary.Load(blob)
	ok := store.Contains(utf16.Encode([]rune("hello")))

Wordlists can be read from plain text or from the chunked binary files used by
the completion server (see ReadWordlist), and DetectFileFormat tells the two
apart from compiled blobs.
*/
package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Store is an immutable, validated dictionary blob.
type Store struct {
	buf     []byte
	maxFreq int
	words   int
	groups  int
}

// Load validates data and takes ownership of it.
// The caller must not modify data after a successful Load.
func Load(data []byte) (*Store, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty blob", ErrFormat)
	}
	if len(data) > MaxBlobSize {
		return nil, fmt.Errorf("%w: blob of %d bytes exceeds %d", ErrFormat, len(data), MaxBlobSize)
	}
	if len(data) < headerSize+1 {
		return nil, fmt.Errorf("%w: blob of %d bytes has no root", ErrFormat, len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, data[:4])
	}
	if data[4] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, data[4])
	}
	if data[5] != 0 {
		return nil, fmt.Errorf("%w: unknown flags %#x", ErrFormat, data[5])
	}

	s := &Store{
		buf:     data,
		maxFreq: int(data[6]),
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	log.Debugf("Dictionary loaded: %d bytes, %d words, %d groups", len(data), s.words, s.groups)
	return s, nil
}

// validate walks every child group once and checks its encoding.
// Child addresses must point forward of the referencing group, which keeps the
// structure acyclic and every traversal finite.
func (s *Store) validate() error {
	seen := make(map[int]struct{})
	stack := []int{headerSize}

	for len(stack) > 0 {
		group := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[group]; ok {
			continue
		}
		seen[group] = struct{}{}
		s.groups++

		count, pos, ok := decodeCount(s.buf, group)
		if !ok {
			return fmt.Errorf("%w: truncated count at offset %d", ErrFormat, group)
		}
		if count == 0 && group != headerSize {
			return fmt.Errorf("%w: empty child group at offset %d", ErrFormat, group)
		}

		prev := -1
		for i := 0; i < count; i++ {
			at := pos
			n, next, ok := decodeNode(s.buf, pos)
			if !ok {
				return fmt.Errorf("%w: truncated record at offset %d", ErrFormat, at)
			}
			pos = next
			switch {
			case n.Code == 0:
				return fmt.Errorf("%w: zero code at offset %d", ErrFormat, at)
			case int(n.Code) <= prev:
				return fmt.Errorf("%w: codes not ascending at offset %d", ErrFormat, at)
			case !n.Terminal && !n.HasChildren():
				return fmt.Errorf("%w: dead edge at offset %d", ErrFormat, at)
			case n.Terminal && n.Frequency > s.maxFreq:
				return fmt.Errorf("%w: frequency %d above header maximum %d at offset %d",
					ErrFormat, n.Frequency, s.maxFreq, at)
			}
			prev = int(n.Code)
			if n.Terminal {
				s.words++
			}
			if n.HasChildren() {
				if n.Children <= group || n.Children >= len(s.buf) {
					return fmt.Errorf("%w: child address %d out of range at offset %d", ErrFormat, n.Children, at)
				}
				stack = append(stack, n.Children)
			}
		}
	}
	return nil
}

// ReadRegion reserves a buffer of length bytes and fills it from r at offset,
// then loads it.
func ReadRegion(r io.ReaderAt, offset, length, maxSize int64) (*Store, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: cannot reserve %d bytes", ErrAllocation, length)
	}
	if maxSize <= 0 || maxSize > MaxBlobSize {
		maxSize = MaxBlobSize
	}
	if length > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrAllocation, length, maxSize)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", ErrFormat, offset)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(r, offset, length), buf); err != nil {
		return nil, fmt.Errorf("%w: short read of %d bytes at offset %d: %v", ErrFormat, length, offset, err)
	}
	return Load(buf)
}

// LoadFile loads the blob stored in path at offset.
// A zero length reads the remainder of the file.
func LoadFile(path string, offset, length, maxSize int64) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer file.Close()

	if length == 0 {
		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat dictionary %s: %w", path, err)
		}
		length = info.Size() - offset
		if length <= 0 {
			return nil, fmt.Errorf("%w: %s has no data after offset %d", ErrFormat, path, offset)
		}
	}

	store, err := ReadRegion(file, offset, length, maxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// Root returns the offset of the root child group.
func (s *Store) Root() int {
	return headerSize
}

// Children returns an iterator over the child group at offset group.
func (s *Store) Children(group int) Iterator {
	count, pos, _ := decodeCount(s.buf, group)
	return Iterator{buf: s.buf, pos: pos, remaining: count}
}

// Child returns the record for code in the group, if any.
func (s *Store) Child(group int, code uint16) (Node, bool) {
	it := s.Children(group)
	for {
		n, ok := it.Next()
		if !ok || n.Code > code {
			return Node{}, false
		}
		if n.Code == code {
			return n, true
		}
	}
}

// Lookup walks word by exact code match and returns the record of its last code.
func (s *Store) Lookup(word []uint16) (Node, bool) {
	if len(word) == 0 {
		return Node{}, false
	}
	group := s.Root()
	var n Node
	for i, code := range word {
		var ok bool
		n, ok = s.Child(group, code)
		if !ok {
			return Node{}, false
		}
		if i < len(word)-1 {
			if !n.HasChildren() {
				return Node{}, false
			}
			group = n.Children
		}
	}
	return n, true
}

// Contains reports whether word is a complete dictionary word.
// Prefixes of words do not count.
func (s *Store) Contains(word []uint16) bool {
	n, ok := s.Lookup(word)
	return ok && n.Terminal
}

// MaxFrequency returns the upper bound of every stored frequency.
func (s *Store) MaxFrequency() int {
	return s.maxFreq
}

// Size returns the blob size in bytes.
func (s *Store) Size() int {
	return len(s.buf)
}

// Words returns the number of terminal records in the blob.
func (s *Store) Words() int {
	return s.words
}

// Bytes returns the underlying blob. It must not be modified.
func (s *Store) Bytes() []byte {
	return s.buf
}
