package cmd

import (
	"github.com/bastiangx/tapdict/internal/logger"
	"github.com/bastiangx/tapdict/pkg/config"
	"github.com/bastiangx/tapdict/pkg/engine"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "tapc",
	Short: "tapc compiles and queries tap dictionaries",
	Long:  "Compile wordlists into dictionary blobs, inspect them and try suggestions from the command line.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(debug)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig returns the config named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(configPath)
}

// openDictionary opens the blob at path with the weights of cfg.
func openDictionary(path string, cfg *config.Config) (*engine.Engine, error) {
	ec := cfg.Engine
	return engine.OpenFile(path, 0, 0, ec.TypedLetterMultiplier, ec.FullWordMultiplier, ec.MaxBlobSize)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (defaults are used when empty)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(sizesCmd)
	rootCmd.AddCommand(configCmd)
}
