package cmd

import (
	"fmt"
	"sort"

	"github.com/bastiangx/tapdict/internal/utils"
	"github.com/bastiangx/tapdict/pkg/config"
	"github.com/spf13/cobra"
)

var (
	configReset   bool
	configRuntime bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",
	Long: `Show the active config file and its query defaults. Flags change and save
them; --reset rewrites the file with the built-in defaults.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	f := configCmd.Flags()
	f.BoolVar(&configReset, "reset", false, "Rewrite the config file with defaults")
	f.BoolVar(&configRuntime, "runtime", false, "Also show where dictionaries and config are looked up")
	f.Int("max-words", 0, "Default number of suggestions")
	f.Int("max-alternatives", 0, "Alternates tried per tap")
	f.Int("max-corrections", 0, "Alternate substitutions allowed (0 = by input length)")
	f.Bool("completions", false, "Suggest longer words by default")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if configReset {
		if path == "" {
			if err := config.RebuildConfigFile(); err != nil {
				return err
			}
		} else if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
			return err
		}
	}

	cfg, active, err := config.LoadConfigWithPriority(path)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	maxWords := changedInt(cmd, "max-words")
	maxAlternatives := changedInt(cmd, "max-alternatives")
	maxCorrections := changedInt(cmd, "max-corrections")
	var completions *bool
	if f.Changed("completions") {
		v, _ := f.GetBool("completions")
		completions = &v
	}
	if maxWords != nil || maxAlternatives != nil || maxCorrections != nil || completions != nil {
		if active == "" {
			return fmt.Errorf("no config file to update")
		}
		if err := cfg.Update(active, maxWords, maxAlternatives, maxCorrections, completions); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "config:           %s\n", config.GetActiveConfigPath(active))
	fmt.Fprintf(w, "max_words:        %d\n", cfg.Query.MaxWords)
	fmt.Fprintf(w, "max_alternatives: %d\n", cfg.Query.MaxAlternatives)
	fmt.Fprintf(w, "max_corrections:  %d\n", cfg.Query.MaxCorrections)
	fmt.Fprintf(w, "completions:      %t\n", cfg.Query.Completions)
	fmt.Fprintf(w, "layout:           %s\n", cfg.CLI.Layout)

	if configRuntime {
		resolver, err := utils.NewPathResolver()
		if err != nil {
			return err
		}
		info := resolver.GetRuntimeInfo()
		keys := make([]string, 0, len(info))
		for k := range info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%-17s %s\n", k+":", info[k])
		}
	}
	return nil
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}
