package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bastiangx/tapdict/internal/utils"
	"github.com/bastiangx/tapdict/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	compileOutput   string
	compileMaxWords int
)

var compileCmd = &cobra.Command{
	Use:   "compile <wordlist>",
	Short: "Compile a wordlist into a dictionary blob",
	Long: `Compile a text wordlist (word and optional frequency per line), a chunk
file or a directory of dict_NNNN.bin chunks into a dictionary blob.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Output file (default: <wordlist>.dict)")
	compileCmd.Flags().IntVar(&compileMaxWords, "max-words", 0, "Keep only the first n words of a chunk directory (0 = all)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	src := args[0]
	out := compileOutput
	if out == "" {
		out = strings.TrimSuffix(src, filepath.Ext(src)) + ".dict"
	}

	start := time.Now()
	entries, err := readEntries(src, compileMaxWords)
	if err != nil {
		return err
	}

	b := dictionary.NewBuilder().AddEntries(entries)
	blob, err := b.Build()
	if err != nil {
		return fmt.Errorf("compile %s: %w", src, err)
	}
	err = utils.WriteFileAtomic(out, func(w io.Writer) error {
		_, err := w.Write(blob)
		return err
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	log.Debugf("Compiled %s in %v", src, time.Since(start))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d words, %d bytes\n", out, b.Len(), len(blob))
	return nil
}

func readEntries(src string, maxWords int) ([]dictionary.Entry, error) {
	if maxWords > 0 {
		format, err := dictionary.DetectFileFormat(src)
		if err != nil {
			return nil, err
		}
		if format == dictionary.FormatChunkDir {
			return dictionary.ReadChunkDir(src, maxWords)
		}
	}
	entries, err := dictionary.ReadWordlist(src)
	if err != nil {
		return nil, err
	}
	if maxWords > 0 && len(entries) > maxWords {
		entries = entries[:maxWords]
	}
	return entries, nil
}
