package cmd

import (
	"fmt"

	"github.com/bastiangx/tapdict/internal/utils"
	"github.com/bastiangx/tapdict/pkg/keys"
	"github.com/bastiangx/tapdict/pkg/suggest"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// wordColumn is the display width words are padded to.
const wordColumn = 24

var (
	suggestSkip        int
	suggestLimit       int
	suggestCompletions bool
	suggestLayout      string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <dict> <input>",
	Short: "Suggest words for typed input",
	Long: `Map input to taps through a keyboard layout and print the ranked suggestions.
Every key also tries its neighbours, so "wprld" finds "world".`,
	Args: cobra.ExactArgs(2),
	RunE: runSuggest,
}

func init() {
	f := suggestCmd.Flags()
	f.IntVar(&suggestSkip, "skip", suggest.NoSkip, "Tap index that may be ignored (-1 = none)")
	f.IntVarP(&suggestLimit, "limit", "n", 0, "Max suggestions (default from config)")
	f.BoolVarP(&suggestCompletions, "completions", "x", false, "Also suggest longer words")
	f.StringVar(&suggestLayout, "layout", "", "Keyboard layout (default from config)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	input := args[1]
	if !utils.IsValidInput(input, cfg.Query.MaxWordLength) {
		return fmt.Errorf("invalid input %q", input)
	}

	layoutName := cfg.CLI.Layout
	if suggestLayout != "" {
		layoutName = suggestLayout
	}
	layout, err := keys.LayoutByName(layoutName)
	if err != nil {
		return err
	}

	e, err := openDictionary(args[0], cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	q := cfg.Query.NewQuery(layout.Taps(input, cfg.Query.MaxAlternatives))
	q.SkipPos = suggestSkip
	if suggestLimit > 0 {
		q.MaxWords = suggestLimit
	}
	q.Completions = q.Completions || suggestCompletions

	suggestions, err := e.Suggest(q)
	if err != nil {
		return err
	}

	caps := utils.ProcessCapitals(input)
	defer caps.Release()
	for i, s := range suggestions {
		word := runewidth.FillRight(caps.Apply(s.Word), wordColumn)
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s %d\n", i+1, word, s.Frequency)
	}
	return nil
}
