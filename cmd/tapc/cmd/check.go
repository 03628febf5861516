package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <dict> <word>...",
	Short: "Report whether words are in a dictionary",
	Long:  "Check words for exact membership. Exits with an error when any of them is missing.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openDictionary(args[0], cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	missing := 0
	for _, word := range args[1:] {
		if e.IsValid(word) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tvalid\n", word)
			continue
		}
		missing++
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tmissing\n", word)
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d words missing", missing, len(args)-1)
	}
	return nil
}
