// Package engine owns loaded dictionaries: the Engine handle with its scoring
// multipliers and lifecycle, and the Registry mapping integer handles to them.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf16"

	"github.com/bastiangx/tapdict/pkg/dictionary"
	"github.com/bastiangx/tapdict/pkg/suggest"
	"github.com/charmbracelet/log"
)

var (
	ErrClosed            = errors.New("engine: closed")
	ErrInvalidMultiplier = errors.New("engine: multiplier must be at least 1")
	ErrInvalidHandle     = errors.New("engine: invalid handle")
)

// Engine answers suggestion and membership queries over one dictionary.
// Queries may run concurrently; Close waits for those in flight.
type Engine struct {
	mu      sync.RWMutex
	store   *dictionary.Store
	weights suggest.Weights
	source  string
}

// Open validates data and returns an Engine over it. data must not be
// modified afterwards.
func Open(data []byte, typedLetter, fullWord int) (*Engine, error) {
	weights, err := checkWeights(typedLetter, fullWord)
	if err != nil {
		return nil, err
	}
	store, err := dictionary.Load(data)
	if err != nil {
		return nil, err
	}
	return newEngine(store, weights, ""), nil
}

// OpenFile reads length bytes at offset of path and opens them. A zero length
// reads to the end of the file.
func OpenFile(path string, offset, length int64, typedLetter, fullWord int, maxSize int64) (*Engine, error) {
	weights, err := checkWeights(typedLetter, fullWord)
	if err != nil {
		return nil, err
	}
	store, err := dictionary.LoadFile(path, offset, length, maxSize)
	if err != nil {
		return nil, err
	}
	return newEngine(store, weights, path), nil
}

// New wraps an already loaded store.
func New(store *dictionary.Store, typedLetter, fullWord int) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", dictionary.ErrFormat)
	}
	weights, err := checkWeights(typedLetter, fullWord)
	if err != nil {
		return nil, err
	}
	return newEngine(store, weights, ""), nil
}

func newEngine(store *dictionary.Store, weights suggest.Weights, source string) *Engine {
	log.Debugf("Opened dictionary: %d words, %d bytes, max frequency %d",
		store.Words(), store.Size(), store.MaxFrequency())
	return &Engine{store: store, weights: weights, source: source}
}

func checkWeights(typedLetter, fullWord int) (suggest.Weights, error) {
	if typedLetter < 1 || fullWord < 1 {
		return suggest.Weights{}, fmt.Errorf("%w: typed letter %d, full word %d",
			ErrInvalidMultiplier, typedLetter, fullWord)
	}
	return suggest.Weights{TypedLetter: typedLetter, FullWord: fullWord}, nil
}

// Suggestions writes the best matches for q into out and returns how many
// were written. A nil or closed engine writes nothing.
func (e *Engine) Suggestions(q suggest.Query, out *suggest.Output) (int, error) {
	if e == nil {
		if out != nil {
			out.Reset()
		}
		return 0, nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.store == nil {
		if out != nil {
			out.Reset()
		}
		return 0, ErrClosed
	}
	return suggest.Search(e.store, e.weights, q, out)
}

// Suggest is Suggestions returning decoded words.
func (e *Engine) Suggest(q suggest.Query) ([]suggest.Suggestion, error) {
	out := suggest.NewOutput(max(q.MaxWords, 0), max(q.MaxWordLength, 1))
	if _, err := e.Suggestions(q, out); err != nil {
		return nil, err
	}
	return out.Suggestions(), nil
}

// IsValidWord reports whether word is stored as a complete word.
func (e *Engine) IsValidWord(word []uint16) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.store == nil {
		return false
	}
	return e.store.Contains(word)
}

// IsValid is IsValidWord for a Go string.
func (e *Engine) IsValid(word string) bool {
	return e.IsValidWord(utf16.Encode([]rune(word)))
}

// Info describes a loaded engine.
type Info struct {
	Source       string
	Words        int
	Size         int
	MaxFrequency int
	Weights      suggest.Weights
}

// Info returns statistics about the dictionary, or ErrClosed.
func (e *Engine) Info() (Info, error) {
	if e == nil {
		return Info{}, ErrClosed
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.store == nil {
		return Info{}, ErrClosed
	}
	return Info{
		Source:       e.source,
		Words:        e.store.Words(),
		Size:         e.store.Size(),
		MaxFrequency: e.store.MaxFrequency(),
		Weights:      e.weights,
	}, nil
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool {
	if e == nil {
		return true
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store == nil
}

// Close releases the dictionary once in-flight queries have returned.
// Closing twice returns ErrClosed.
func (e *Engine) Close() error {
	if e == nil {
		return ErrClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store == nil {
		return ErrClosed
	}
	e.store = nil
	return nil
}
