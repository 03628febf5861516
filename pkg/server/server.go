package server

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/bastiangx/tapdict/internal/utils"
	"github.com/bastiangx/tapdict/pkg/config"
	"github.com/bastiangx/tapdict/pkg/dictionary"
	"github.com/bastiangx/tapdict/pkg/engine"
	"github.com/bastiangx/tapdict/pkg/keys"
	"github.com/bastiangx/tapdict/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// maxLimit caps the per request result count.
	maxLimit = 64
	// cacheEntries bounds the suggest response cache.
	cacheEntries = 512
)

// Watcher is notified of the dictionary files the server has open.
type Watcher interface {
	Add(path string) error
	Remove(path string) error
}

// Server answers msgpack requests against a registry of dictionaries.
type Server struct {
	registry *engine.Registry
	config   *config.Config
	layout   *keys.Layout
	cache    *HotCache
	watcher  Watcher

	mu            sync.Mutex
	sources       map[engine.Handle]string
	defaultHandle engine.Handle

	dec          *msgpack.Decoder
	enc          *msgpack.Encoder
	requestCount int
}

// NewServer creates a server reading requests from r and writing responses to w.
func NewServer(registry *engine.Registry, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	layout, err := keys.LayoutByName(cfg.CLI.Layout)
	if err != nil {
		log.Warnf("%v, using qwerty", err)
		layout = keys.QWERTY
	}
	return &Server{
		registry: registry,
		config:   cfg,
		layout:   layout,
		cache:    NewHotCache(cacheEntries),
		sources:  make(map[engine.Handle]string),
		dec:      msgpack.NewDecoder(r),
		enc:      msgpack.NewEncoder(w),
	}
}

// SetWatcher registers w for the dictionaries opened from now on.
func (s *Server) SetWatcher(w Watcher) {
	s.watcher = w
}

// OpenDictionary opens the blob file at path. The first dictionary opened
// becomes the default for requests without a handle.
func (s *Server) OpenDictionary(path string) (engine.Handle, error) {
	ec := s.config.Engine
	h, err := s.registry.OpenFile(path, 0, 0, ec.TypedLetterMultiplier, ec.FullWordMultiplier, ec.MaxBlobSize)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.sources[h] = path
	if s.defaultHandle == 0 {
		s.defaultHandle = h
	}
	s.mu.Unlock()

	if s.watcher != nil {
		if err := s.watcher.Add(path); err != nil {
			log.Warnf("Cannot watch %s: %v", path, err)
		}
	}
	log.Debugf("Opened %s as dictionary %d", path, h)
	return h, nil
}

// Reload reopens every dictionary loaded from path and swaps it in. A file
// that fails to load leaves the previous dictionary in service.
func (s *Server) Reload(path string) {
	s.mu.Lock()
	var handles []engine.Handle
	for h, src := range s.sources {
		if sameFile(src, path) {
			handles = append(handles, h)
		}
	}
	s.mu.Unlock()

	ec := s.config.Engine
	for _, h := range handles {
		e, err := engine.OpenFile(path, 0, 0, ec.TypedLetterMultiplier, ec.FullWordMultiplier, ec.MaxBlobSize)
		if err != nil {
			log.Errorf("Reloading dictionary %d from %s failed, keeping the loaded one: %v", h, path, err)
			continue
		}
		if err := s.registry.Swap(h, e); err != nil {
			log.Warnf("Dictionary %d closed before reload: %v", h, err)
			e.Close()
			continue
		}
		s.cache.Invalidate(h)
		log.Infof("Reloaded dictionary %d from %s", h, path)
	}
}

func sameFile(a, b string) bool {
	return utils.GetAbsolutePath(a) == utils.GetAbsolutePath(b)
}

// Start announces readiness and serves requests until the input ends.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			log.Errorf("Unmarshaling request: %v", err)
			if err := s.sendError("", "invalid request", CodeBadRequest); err != nil {
				return err
			}
			continue
		}
		if err := s.handleRequest(&req); err != nil {
			return err
		}
	}
}

// handleRequest dispatches req. Only failures to write a response are returned.
func (s *Server) handleRequest(req *Request) error {
	s.requestCount++

	switch req.Op {
	case "", "suggest":
		return s.handleSuggest(req)
	case "valid":
		return s.handleValid(req)
	case "open":
		return s.handleOpen(req)
	case "close":
		return s.handleClose(req)
	case "info":
		return s.handleInfo(req)
	case "health":
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown op %q", req.Op), CodeBadRequest)
	}
}

func (s *Server) handle(req *Request) engine.Handle {
	if req.Handle != 0 {
		return engine.Handle(req.Handle)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultHandle
}

// taps builds the tap sequence of req from its codes or its typed input.
func (s *Server) taps(req *Request, maxAlternatives int) ([]keys.Tap, error) {
	if len(req.Codes) > 0 {
		stride := max(req.Stride, 1)
		return keys.Unpack(req.Codes, len(req.Codes)/stride, stride)
	}
	if !utils.IsValidInput(req.Input, suggest.MaxWordLength) {
		return nil, fmt.Errorf("invalid input %q", req.Input)
	}
	return s.layout.Taps(req.Input, maxAlternatives), nil
}

func (s *Server) handleSuggest(req *Request) error {
	start := time.Now()
	h := s.handle(req)
	if s.registry.Get(h) == nil {
		return s.sendError(req.ID, fmt.Sprintf("unknown handle %d", h), CodeNotFound)
	}

	q := s.config.Query.NewQuery(nil)
	taps, err := s.taps(req, q.MaxAlternatives)
	if err != nil {
		return s.sendError(req.ID, err.Error(), CodeBadRequest)
	}
	q.Taps = taps
	if req.Limit > 0 {
		q.MaxWords = min(req.Limit, maxLimit)
	}
	if req.Skip != nil {
		q.SkipPos = *req.Skip
	}
	if req.Completions != nil {
		q.Completions = *req.Completions
	}

	key := cacheKey(h, req, q)
	suggestions, hit := s.cache.Get(key)
	if !hit {
		gen := s.cache.Generation(h)
		out := suggest.NewOutput(q.MaxWords, q.MaxWordLength)
		n, err := s.registry.Suggestions(h, q, out)
		if err != nil {
			code := CodeBadRequest
			if errors.Is(err, engine.ErrClosed) {
				code = CodeNotFound
			}
			return s.sendError(req.ID, err.Error(), code)
		}

		caps := utils.ProcessCapitals(req.Input)
		suggestions = make([]Suggestion, n)
		for i := range suggestions {
			suggestions[i] = Suggestion{
				Word:  caps.Apply(out.Word(i)),
				Score: out.Frequencies[i],
				Rank:  uint16(i + 1),
			}
		}
		caps.Release()
		s.cache.Put(h, gen, key, suggestions)
	}

	return s.send(SuggestResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func cacheKey(h engine.Handle, req *Request, q suggest.Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d|%d|%t|", h, q.MaxWords, q.SkipPos, q.Completions)
	if len(req.Codes) > 0 {
		b.WriteString(strconv.Itoa(req.Stride))
		for _, c := range req.Codes {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(c))
		}
		return b.String()
	}
	b.WriteString(req.Input)
	return b.String()
}

func (s *Server) handleValid(req *Request) error {
	start := time.Now()
	h := s.handle(req)
	if s.registry.Get(h) == nil {
		return s.sendError(req.ID, fmt.Sprintf("unknown handle %d", h), CodeNotFound)
	}
	valid := s.registry.IsValidWord(h, utf16.Encode([]rune(req.Word)))
	return s.send(ValidResponse{ID: req.ID, Valid: valid, TimeTaken: time.Since(start).Microseconds()})
}

func (s *Server) handleOpen(req *Request) error {
	start := time.Now()
	if req.Path == "" {
		return s.sendError(req.ID, "missing path", CodeBadRequest)
	}
	h, err := s.OpenDictionary(req.Path)
	if err != nil {
		code := CodeInternal
		if errors.Is(err, dictionary.ErrFormat) || errors.Is(err, dictionary.ErrAllocation) {
			code = CodeUnprocessable
		}
		return s.sendError(req.ID, err.Error(), code)
	}
	info, ok := s.describe(h)
	if !ok {
		return s.sendError(req.ID, fmt.Sprintf("dictionary %d closed while opening", h), CodeInternal)
	}
	return s.send(OpenResponse{ID: req.ID, Dictionary: info, TimeTaken: time.Since(start).Microseconds()})
}

func (s *Server) handleClose(req *Request) error {
	h := s.handle(req)
	if err := s.registry.Close(h); err != nil {
		return s.sendError(req.ID, err.Error(), CodeNotFound)
	}
	s.cache.Invalidate(h)

	s.mu.Lock()
	path := s.sources[h]
	delete(s.sources, h)
	if s.defaultHandle == h {
		s.defaultHandle = 0
	}
	shared := false
	for _, src := range s.sources {
		shared = shared || sameFile(src, path)
	}
	s.mu.Unlock()

	if path != "" && !shared && s.watcher != nil {
		if err := s.watcher.Remove(path); err != nil {
			log.Warnf("Cannot stop watching %s: %v", path, err)
		}
	}
	return s.send(StatusResponse{ID: req.ID, Status: "closed"})
}

func (s *Server) handleInfo(req *Request) error {
	resp := InfoResponse{
		ID:       req.ID,
		Default:  int32(s.handle(&Request{})),
		Cache:    s.cache.Stats(),
		Requests: s.requestCount,
	}
	for _, h := range s.registry.Handles() {
		if info, ok := s.describe(h); ok {
			resp.Dictionaries = append(resp.Dictionaries, info)
		}
	}
	return s.send(resp)
}

func (s *Server) describe(h engine.Handle) (DictionaryInfo, bool) {
	info, err := s.registry.Get(h).Info()
	if err != nil {
		return DictionaryInfo{}, false
	}
	return DictionaryInfo{
		Handle:       int32(h),
		Source:       info.Source,
		Words:        info.Words,
		Size:         info.Size,
		MaxFrequency: info.MaxFrequency,
	}, true
}

func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	log.Debugf("Request %s failed: %s", id, message)
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
