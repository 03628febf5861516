package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(16)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <dict>",
	Short: "Show statistics of a dictionary blob",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openDictionary(args[0], cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	info, err := e.Info()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	row := func(label string, value any) {
		fmt.Fprintln(w, labelStyle.Render(label)+valueStyle.Render(fmt.Sprint(value)))
	}
	row("source", info.Source)
	row("words", info.Words)
	row("size", fmt.Sprintf("%d bytes", info.Size))
	row("max frequency", info.MaxFrequency)
	row("typed letter", fmt.Sprintf("x%d", info.Weights.TypedLetter))
	row("full word", fmt.Sprintf("x%d", info.Weights.FullWord))
	return nil
}
