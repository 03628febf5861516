// Package cli reads typed words from stdin and prints what the engine
// suggests for them, for debugging layouts and scoring in real time.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/tapdict/internal/utils"
	"github.com/bastiangx/tapdict/pkg/config"
	"github.com/bastiangx/tapdict/pkg/engine"
	"github.com/bastiangx/tapdict/pkg/keys"
	"github.com/bastiangx/tapdict/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler answers one line of input at a time:
//
//	helo        suggestions for the typed word
//	?hello      whether hello is a dictionary word
//	:2 heklo    suggestions with tap 2 skippable
type InputHandler struct {
	engine       *engine.Engine
	layout       *keys.Layout
	query        config.QueryConfig
	limit        int
	requestCount int
}

// NewInputHandler returns a handler over e using the query defaults of cfg.
func NewInputHandler(e *engine.Engine, cfg *config.Config) *InputHandler {
	layout, err := keys.LayoutByName(cfg.CLI.Layout)
	if err != nil {
		log.Warnf("%v, using qwerty", err)
		layout = keys.QWERTY
	}
	return &InputHandler{
		engine: e,
		layout: layout,
		query:  cfg.Query,
		limit:  cfg.CLI.DefaultLimit,
	}
}

// Start runs the input loop until r is exhausted.
func (h *InputHandler) Start(r io.Reader) error {
	log.Print("tapdict CLI")
	log.Print("type a word and press Enter to see the suggestions, ?word checks a word (Ctrl+C to exit):")

	scanner := bufio.NewScanner(r)
	for {
		log.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if word, ok := strings.CutPrefix(line, "?"); ok {
			h.handleCheck(word)
			continue
		}
		h.handleInput(line)
	}
}

func (h *InputHandler) handleCheck(word string) bool {
	valid := h.engine.IsValid(word)
	if valid {
		log.Printf("'%s' is a word", word)
	} else {
		log.Printf("'%s' is not a word", word)
	}
	return valid
}

// parseSkip splits a ":n input" line into the skip position and the input.
func parseSkip(line string) (int, string, error) {
	rest, ok := strings.CutPrefix(line, ":")
	if !ok {
		return suggest.NoSkip, line, nil
	}
	pos, input, found := strings.Cut(rest, " ")
	if !found {
		return 0, "", fmt.Errorf("missing input after skip position %q", pos)
	}
	skip, err := strconv.Atoi(pos)
	if err != nil || skip < 0 {
		return 0, "", fmt.Errorf("invalid skip position %q", pos)
	}
	return skip, strings.TrimSpace(input), nil
}

// handleInput prints and returns the suggestions for one line.
func (h *InputHandler) handleInput(line string) []suggest.Suggestion {
	h.requestCount++

	skip, input, err := parseSkip(line)
	if err != nil {
		log.Error(err)
		return nil
	}
	if !utils.IsValidInput(input, h.query.MaxWordLength) {
		log.Warnf("No suggestions found for '%s' (filtered out)", input)
		return nil
	}

	q := h.query.NewQuery(h.layout.Taps(input, h.query.MaxAlternatives))
	q.MaxWords = h.limit
	q.SkipPos = skip

	start := time.Now()
	suggestions, err := h.engine.Suggest(q)
	log.Debugf("Took [ %v ] for '%s' (request %d)", time.Since(start), input, h.requestCount)
	if err != nil {
		log.Errorf("Query failed: %v", err)
		return nil
	}
	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for '%s'", input)
		return nil
	}

	caps := utils.ProcessCapitals(input)
	defer caps.Release()
	log.Printf("Found %d suggestions for '%s':", len(suggestions), input)
	for i := range suggestions {
		suggestions[i].Word = caps.Apply(suggestions[i].Word)
		log.Printf("%2d. %-40s (score: %10s)", i+1, wordStyle.Render(suggestions[i].Word),
			formatWithCommas(suggestions[i].Frequency))
	}
	return suggestions
}

// formatWithCommas formats an integer with comma separators
func formatWithCommas(n int) string {
	str := strconv.Itoa(n)
	if n < 1000 {
		return str
	}
	var b strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(char)
	}
	return b.String()
}
