package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/bastiangx/tapdict/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Handle identifies an engine in a Registry. The zero Handle is never issued.
type Handle int32

// Registry is a table of open engines addressed by Handle.
type Registry struct {
	mu      sync.RWMutex
	engines map[Handle]*Engine
	next    Handle
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[Handle]*Engine)}
}

// Open loads data and registers the resulting engine.
func (r *Registry) Open(data []byte, typedLetter, fullWord int) (Handle, error) {
	e, err := Open(data, typedLetter, fullWord)
	if err != nil {
		return 0, err
	}
	return r.Add(e)
}

// OpenFile loads a file region and registers the resulting engine.
func (r *Registry) OpenFile(path string, offset, length int64, typedLetter, fullWord int, maxSize int64) (Handle, error) {
	e, err := OpenFile(path, offset, length, typedLetter, fullWord, maxSize)
	if err != nil {
		return 0, err
	}
	return r.Add(e)
}

// Add registers e under a fresh handle.
func (r *Registry) Add(e *Engine) (Handle, error) {
	if e == nil || e.Closed() {
		return 0, ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.engines) >= math.MaxInt32 {
		return 0, fmt.Errorf("%w: handle table full", ErrInvalidHandle)
	}
	for {
		if r.next == math.MaxInt32 {
			r.next = 0
		}
		r.next++
		if _, used := r.engines[r.next]; !used {
			break
		}
	}
	r.engines[r.next] = e
	log.Debugf("Registered engine %d", r.next)
	return r.next, nil
}

// Get returns the engine for h, or nil.
func (r *Registry) Get(h Handle) *Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engines[h]
}

// Suggestions runs q on the engine for h. Unknown handles write nothing.
// A query that lands on an engine swapped out by a reload is rerun on its
// replacement.
func (r *Registry) Suggestions(h Handle, q suggest.Query, out *suggest.Output) (int, error) {
	for {
		e := r.Get(h)
		if e == nil {
			if out != nil {
				out.Reset()
			}
			return 0, nil
		}
		n, err := e.Suggestions(q, out)
		if !errors.Is(err, ErrClosed) || r.Get(h) == e {
			return n, err
		}
	}
}

// IsValidWord reports whether word is a complete word of the engine for h.
func (r *Registry) IsValidWord(h Handle, word []uint16) bool {
	for {
		e := r.Get(h)
		valid := e.IsValidWord(word)
		if valid || e == nil || !e.Closed() || r.Get(h) == e {
			return valid
		}
	}
}

// Swap installs e under h and closes the engine it replaces once that
// engine's in-flight queries have returned.
func (r *Registry) Swap(h Handle, e *Engine) error {
	if e == nil || e.Closed() {
		return ErrClosed
	}
	r.mu.Lock()
	old, ok := r.engines[h]
	if ok {
		r.engines[h] = e
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	if err := old.Close(); err != nil {
		log.Warnf("Replaced engine %d was already closed", h)
	}
	log.Debugf("Swapped engine %d", h)
	return nil
}

// Close removes h and closes its engine.
func (r *Registry) Close(h Handle) error {
	r.mu.Lock()
	e, ok := r.engines[h]
	delete(r.engines, h)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return e.Close()
}

// Handles returns the open handles in ascending order.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := make([]Handle, 0, len(r.engines))
	for h := range r.engines {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	return hs
}

// CloseAll closes every registered engine.
func (r *Registry) CloseAll() {
	for _, h := range r.Handles() {
		if err := r.Close(h); err != nil {
			log.Warnf("Failed to close engine %d: %v", h, err)
		}
	}
}
