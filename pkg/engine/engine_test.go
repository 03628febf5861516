package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"unicode/utf16"

	"github.com/bastiangx/tapdict/pkg/dictionary"
	"github.com/bastiangx/tapdict/pkg/keys"
	"github.com/bastiangx/tapdict/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = map[string]int{
	"cat": 100, "bat": 100, "car": 80, "cart": 60,
	"hello": 200, "help": 150, "world": 110, "don't": 50,
}

func blob(t testing.TB, words map[string]int) []byte {
	t.Helper()
	b := dictionary.NewBuilder()
	for w, f := range words {
		b.Add(w, f)
	}
	data, err := b.Build()
	require.NoError(t, err)
	return data
}

func u16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func TestOpen(t *testing.T) {
	data := blob(t, sample)

	tests := []struct {
		name    string
		data    []byte
		typed   int
		full    int
		wantErr error
	}{
		{"valid", data, 2, 2, nil},
		{"unit multipliers", data, 1, 1, nil},
		{"zero typed letter", data, 0, 2, ErrInvalidMultiplier},
		{"negative full word", data, 2, -1, ErrInvalidMultiplier},
		{"empty blob", nil, 2, 2, dictionary.ErrFormat},
		{"truncated blob", data[:len(data)-1], 2, 2, dictionary.ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Open(tt.data, tt.typed, tt.full)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, e.Close())
		})
	}
}

func TestOpenFile(t *testing.T) {
	data := blob(t, sample)
	path := filepath.Join(t.TempDir(), "words.dict")
	prefix := []byte("padding!")
	require.NoError(t, os.WriteFile(path, append(prefix, data...), 0o644))

	e, err := OpenFile(path, int64(len(prefix)), int64(len(data)), 2, 2, dictionary.MaxBlobSize)
	require.NoError(t, err)
	defer e.Close()
	assert.True(t, e.IsValid("hello"))

	info, err := e.Info()
	require.NoError(t, err)
	assert.Equal(t, path, info.Source)
	assert.Equal(t, len(sample), info.Words)
	assert.Equal(t, 200, info.MaxFrequency)

	_, err = OpenFile(path, 0, int64(len(data)+len(prefix)), 2, 2, 16)
	assert.ErrorIs(t, err, dictionary.ErrAllocation)

	_, err = OpenFile(path, 0, -1, 2, 2, dictionary.MaxBlobSize)
	assert.ErrorIs(t, err, dictionary.ErrAllocation)

	_, err = OpenFile(path, 0, int64(len(data)), 2, 2, dictionary.MaxBlobSize)
	assert.ErrorIs(t, err, dictionary.ErrFormat, "region starts inside padding")
}

func TestIsValidWord(t *testing.T) {
	e, err := Open(blob(t, sample), 2, 2)
	require.NoError(t, err)
	defer e.Close()

	for w := range sample {
		assert.True(t, e.IsValidWord(u16(w)), w)
	}
	for _, w := range []string{"", "ca", "carts", "hell", "dont", "Cat"} {
		assert.False(t, e.IsValid(w), w)
	}
}

func TestSuggestions(t *testing.T) {
	e, err := Open(blob(t, sample), 2, 2)
	require.NoError(t, err)
	defer e.Close()

	q := suggest.NewQuery([]keys.Tap{{Primary: 'c', Alternates: []uint16{'b'}}, {Primary: 'a'}, {Primary: 't'}})
	out := suggest.NewOutput(q.MaxWords, q.MaxWordLength)
	n, err := e.Suggestions(q, out)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, "cat", out.Word(0))
	assert.Equal(t, "bat", out.Word(1))
	assert.Greater(t, out.Frequencies[0], out.Frequencies[1])

	got, err := e.Suggest(suggest.NewQuery(keys.QWERTY.Taps("wprld", 4)))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "world", got[0].Word)
}

func TestLifecycle(t *testing.T) {
	e, err := Open(blob(t, sample), 2, 2)
	require.NoError(t, err)

	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.Close(), ErrClosed)
	assert.True(t, e.Closed())

	out := suggest.NewOutput(4, 8)
	n, err := e.Suggestions(suggest.NewQuery(keys.FromString("cat")), out)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, n)
	assert.False(t, e.IsValid("cat"))
	_, err = e.Info()
	assert.ErrorIs(t, err, ErrClosed)

	var nilEngine *Engine
	n, err = nilEngine.Suggestions(suggest.NewQuery(keys.FromString("cat")), out)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, nilEngine.IsValid("cat"))
	assert.ErrorIs(t, nilEngine.Close(), ErrClosed)
}

func TestCloseWaitsForReaders(t *testing.T) {
	e, err := Open(blob(t, sample), 2, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			q := suggest.NewQuery(keys.FromString("hel"))
			q.Completions = true
			out := suggest.NewOutput(q.MaxWords, q.MaxWordLength)
			for i := 0; i < 500; i++ {
				n, err := e.Suggestions(q, out)
				if err != nil {
					assert.ErrorIs(t, err, ErrClosed)
					assert.Zero(t, n)
					return
				}
				assert.Equal(t, 2, n)
				assert.Equal(t, "hello", out.Word(0))
			}
		}()
	}

	close(start)
	require.NoError(t, e.Close())
	wg.Wait()
	assert.False(t, e.IsValid("hello"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	data := blob(t, sample)

	h, err := r.Open(data, 2, 2)
	require.NoError(t, err)
	assert.NotZero(t, h)

	h2, err := r.Open(data, 3, 1)
	require.NoError(t, err)
	assert.NotEqual(t, h, h2)
	assert.Equal(t, []Handle{h, h2}, r.Handles())

	_, err = r.Open([]byte("nope"), 2, 2)
	assert.ErrorIs(t, err, dictionary.ErrFormat)

	assert.True(t, r.IsValidWord(h, u16("cart")))
	out := suggest.NewOutput(4, 8)
	n, err := r.Suggestions(h, suggest.NewQuery(keys.FromString("car")), out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	t.Run("swap", func(t *testing.T) {
		old := r.Get(h)
		next, err := Open(blob(t, map[string]int{"zebra": 10}), 2, 2)
		require.NoError(t, err)

		require.NoError(t, r.Swap(h, next))
		assert.True(t, old.Closed())
		assert.True(t, r.IsValidWord(h, u16("zebra")))
		assert.False(t, r.IsValidWord(h, u16("cart")))

		assert.ErrorIs(t, r.Swap(Handle(999), next), ErrInvalidHandle)
		assert.ErrorIs(t, r.Swap(h, old), ErrClosed)
	})

	t.Run("use after close", func(t *testing.T) {
		require.NoError(t, r.Close(h2))
		assert.ErrorIs(t, r.Close(h2), ErrInvalidHandle)
		assert.Nil(t, r.Get(h2))
		assert.False(t, r.IsValidWord(h2, u16("cart")))

		n, err := r.Suggestions(h2, suggest.NewQuery(keys.FromString("car")), out)
		assert.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, out.Len())
	})

	t.Run("invalid handle", func(t *testing.T) {
		assert.False(t, r.IsValidWord(0, u16("cart")))
		assert.ErrorIs(t, r.Close(0), ErrInvalidHandle)
	})

	r.CloseAll()
	assert.Empty(t, r.Handles())
}

func TestRegistryQueriesSurviveSwaps(t *testing.T) {
	r := NewRegistry()
	data := blob(t, sample)
	h, err := r.Open(data, 2, 2)
	require.NoError(t, err)
	defer r.CloseAll()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := suggest.NewOutput(4, 8)
			q := suggest.NewQuery(keys.FromString("car"))
			for {
				select {
				case <-stop:
					return
				default:
				}
				n, err := r.Suggestions(h, q, out)
				assert.NoError(t, err)
				assert.Equal(t, 1, n)
				assert.True(t, r.IsValidWord(h, u16("cart")))
			}
		}()
	}

	for i := 0; i < 200; i++ {
		next, err := Open(data, 2, 2)
		require.NoError(t, err)
		require.NoError(t, r.Swap(h, next))
	}
	close(stop)
	wg.Wait()
}
