package server

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/tapdict/pkg/config"
	"github.com/bastiangx/tapdict/pkg/dictionary"
	"github.com/bastiangx/tapdict/pkg/engine"
	"github.com/bastiangx/tapdict/pkg/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func writeBlob(t *testing.T, path string, words map[string]int) {
	t.Helper()
	b := dictionary.NewBuilder()
	for w, f := range words {
		b.Add(w, f)
	}
	data, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

type fakeWatcher struct {
	added   []string
	removed []string
}

func (f *fakeWatcher) Add(path string) error {
	f.added = append(f.added, path)
	return nil
}

func (f *fakeWatcher) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

// session encodes reqs, runs a server over them and returns a decoder over
// the responses positioned after the ready message.
func session(t *testing.T, s *Server, in *bytes.Buffer, out *bytes.Buffer, reqs ...any) *msgpack.Decoder {
	t.Helper()
	enc := msgpack.NewEncoder(in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	require.NoError(t, s.Start())

	dec := msgpack.NewDecoder(out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func newServer(t *testing.T, words map[string]int) (*Server, string, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.dict")
	writeBlob(t, path, words)

	in, out := &bytes.Buffer{}, &bytes.Buffer{}
	s := NewServer(engine.NewRegistry(), config.DefaultConfig(), in, out)
	_, err := s.OpenDictionary(path)
	require.NoError(t, err)
	return s, path, in, out
}

var words = map[string]int{"hello": 200, "help": 150, "world": 110, "cat": 100}

func TestServerRoundTrip(t *testing.T) {
	s, path, in, out := newServer(t, words)
	flat := keys.Pack(keys.FromString("cat"), 2)
	yes := true

	dec := session(t, s, in, out,
		Request{ID: "1", Input: "hellp"},
		Request{ID: "2", Op: "suggest", Input: "Wprld"},
		Request{ID: "3", Op: "suggest", Codes: flat, Stride: 2},
		Request{ID: "4", Op: "suggest", Input: "hel", Completions: &yes, Limit: 1},
		Request{ID: "5", Op: "valid", Word: "cat"},
		Request{ID: "6", Op: "valid", Word: "ca"},
		Request{ID: "7", Op: "bogus"},
		Request{ID: "8", Op: "valid", Handle: 99, Word: "cat"},
		Request{ID: "9", Input: "12345"},
		Request{ID: "10", Op: "health"},
		Request{ID: "11", Input: "hellp"},
		Request{ID: "12", Op: "info"},
		Request{ID: "13", Op: "close"},
		Request{ID: "14", Input: "hellp"},
	)

	var sr SuggestResponse
	require.NoError(t, dec.Decode(&sr))
	assert.Equal(t, "1", sr.ID)
	require.NotEmpty(t, sr.Suggestions)
	assert.Equal(t, "hello", sr.Suggestions[0].Word)
	assert.Equal(t, uint16(1), sr.Suggestions[0].Rank)
	assert.Equal(t, len(sr.Suggestions), sr.Count)

	require.NoError(t, dec.Decode(&sr))
	require.NotEmpty(t, sr.Suggestions)
	assert.Equal(t, "World", sr.Suggestions[0].Word)

	require.NoError(t, dec.Decode(&sr))
	require.Len(t, sr.Suggestions, 1)
	assert.Equal(t, "cat", sr.Suggestions[0].Word)

	require.NoError(t, dec.Decode(&sr))
	require.Len(t, sr.Suggestions, 1)
	assert.Equal(t, "hello", sr.Suggestions[0].Word)

	var vr ValidResponse
	require.NoError(t, dec.Decode(&vr))
	assert.Equal(t, "5", vr.ID)
	assert.True(t, vr.Valid)
	vr = ValidResponse{}
	require.NoError(t, dec.Decode(&vr))
	assert.False(t, vr.Valid)

	var er ErrorResponse
	require.NoError(t, dec.Decode(&er))
	assert.Equal(t, ErrorResponse{ID: "7", Error: `unknown op "bogus"`, Code: CodeBadRequest}, er)
	require.NoError(t, dec.Decode(&er))
	assert.Equal(t, "8", er.ID)
	assert.Equal(t, CodeNotFound, er.Code)
	require.NoError(t, dec.Decode(&er))
	assert.Equal(t, "9", er.ID)
	assert.Equal(t, CodeBadRequest, er.Code)

	var st StatusResponse
	require.NoError(t, dec.Decode(&st))
	assert.Equal(t, StatusResponse{ID: "10", Status: "ok"}, st)

	var cached SuggestResponse
	require.NoError(t, dec.Decode(&cached))
	assert.Equal(t, "11", cached.ID)
	assert.Equal(t, "hello", cached.Suggestions[0].Word)

	var info InfoResponse
	require.NoError(t, dec.Decode(&info))
	require.Len(t, info.Dictionaries, 1)
	assert.Equal(t, info.Default, info.Dictionaries[0].Handle)
	assert.Equal(t, path, info.Dictionaries[0].Source)
	assert.Equal(t, len(words), info.Dictionaries[0].Words)
	assert.Equal(t, 1, info.Cache["hits"])
	assert.Equal(t, 12, info.Requests)

	require.NoError(t, dec.Decode(&st))
	assert.Equal(t, "closed", st.Status)

	require.NoError(t, dec.Decode(&er))
	assert.Equal(t, "14", er.ID)
	assert.Equal(t, CodeNotFound, er.Code)

	assert.Zero(t, out.Len(), "one response per request")
}

func TestServerOpenAndReload(t *testing.T) {
	s, _, in, out := newServer(t, words)
	watcher := &fakeWatcher{}
	s.SetWatcher(watcher)

	second := filepath.Join(t.TempDir(), "second.dict")
	writeBlob(t, second, map[string]int{"zebra": 10})
	broken := filepath.Join(t.TempDir(), "broken.dict")
	require.NoError(t, os.WriteFile(broken, []byte("TAPDnope"), 0644))

	dec := session(t, s, in, out,
		Request{ID: "o1", Op: "open", Path: second},
		Request{ID: "o2", Op: "open", Path: broken},
		Request{ID: "o3", Op: "open"},
	)

	var or OpenResponse
	require.NoError(t, dec.Decode(&or))
	assert.Equal(t, second, or.Dictionary.Source)
	assert.Equal(t, 1, or.Dictionary.Words)
	h := engine.Handle(or.Dictionary.Handle)
	assert.Equal(t, []string{second}, watcher.added)

	var er ErrorResponse
	require.NoError(t, dec.Decode(&er))
	assert.Equal(t, CodeUnprocessable, er.Code)
	require.NoError(t, dec.Decode(&er))
	assert.Equal(t, CodeBadRequest, er.Code)

	assert.True(t, s.registry.Get(h).IsValid("zebra"))
	writeBlob(t, second, map[string]int{"zebu": 10})
	s.Reload(second)
	assert.False(t, s.registry.Get(h).IsValid("zebra"))
	assert.True(t, s.registry.Get(h).IsValid("zebu"))

	require.NoError(t, os.WriteFile(second, []byte("garbage"), 0644))
	s.Reload(second)
	assert.True(t, s.registry.Get(h).IsValid("zebu"), "failed reload keeps the loaded dictionary")

	in.Reset()
	out.Reset()
	dec = session(t, s, in, out, Request{ID: "c1", Op: "close", Handle: int32(h)})
	var st StatusResponse
	require.NoError(t, dec.Decode(&st))
	assert.Equal(t, "closed", st.Status)
	assert.Equal(t, []string{second}, watcher.removed)
}

func TestServerRejectsGarbage(t *testing.T) {
	s, _, in, out := newServer(t, words)
	in.Write([]byte{0xc1}) // never used by msgpack
	assert.Error(t, s.Start())

	in.Reset()
	out.Reset()
	require.NoError(t, msgpack.NewEncoder(in).Encode(map[string]any{"id": 7}))
	require.NoError(t, s.Start())

	dec := msgpack.NewDecoder(out)
	var st StatusResponse
	require.NoError(t, dec.Decode(&st))
	var er ErrorResponse
	require.NoError(t, dec.Decode(&er))
	assert.Equal(t, CodeBadRequest, er.Code)
}

func TestHotCache(t *testing.T) {
	c := NewHotCache(2)
	a := []Suggestion{{Word: "a"}}

	c.Put(1, c.Generation(1), "k1", a)
	c.Put(1, c.Generation(1), "k2", a)
	_, ok := c.Get("k1")
	assert.True(t, ok)
	c.Put(2, c.Generation(2), "k3", a)

	_, ok = c.Get("k2")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = c.Get("k1")
	assert.True(t, ok)

	gen := c.Generation(2)
	c.Invalidate(2)
	_, ok = c.Get("k3")
	assert.False(t, ok)
	c.Put(2, gen, "k4", a)
	_, ok = c.Get("k4")
	assert.False(t, ok, "stale generation ignored")

	stats := c.Stats()
	assert.Equal(t, 1, stats["entries"])
	assert.Equal(t, 2, stats["hits"])
}
