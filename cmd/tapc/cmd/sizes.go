package cmd

import (
	"fmt"

	"github.com/bastiangx/tapdict/pkg/dictionary"
	"github.com/spf13/cobra"
)

var sizesCmd = &cobra.Command{
	Use:   "sizes <chunk-dir>",
	Short: "List the dictionary sizes a chunk directory can be compiled to",
	Long:  "Each line is a --max-words value for compile, taking the first chunks of the directory.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSizes,
}

func runSizes(cmd *cobra.Command, args []string) error {
	options, err := dictionary.SizeOptions(args[0])
	if err != nil {
		return err
	}
	if len(options) == 0 {
		return fmt.Errorf("no chunk files found in %s", args[0])
	}
	for _, o := range options {
		fmt.Fprintf(cmd.OutOrStdout(), "%3d chunks  %8d  %s\n", o.Chunks, o.Words, o.Label)
	}
	return nil
}
