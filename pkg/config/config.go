/*
Package config manages the TOML config of the tapdict binaries.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/tapdict/internal/utils"
	"github.com/bastiangx/tapdict/pkg/dictionary"
	"github.com/bastiangx/tapdict/pkg/keys"
	"github.com/bastiangx/tapdict/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Query  QueryConfig  `toml:"query"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// EngineConfig holds the options fixed when a dictionary is opened.
type EngineConfig struct {
	TypedLetterMultiplier int   `toml:"typed_letter_multiplier"`
	FullWordMultiplier    int   `toml:"full_word_multiplier"`
	MaxBlobSize           int64 `toml:"max_blob_size"`
}

// QueryConfig holds per query defaults.
type QueryConfig struct {
	MaxWords        int  `toml:"max_words"`
	MaxWordLength   int  `toml:"max_word_length"`
	MaxAlternatives int  `toml:"max_alternatives"`
	MaxCorrections  int  `toml:"max_corrections"`
	Completions     bool `toml:"completions"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	Watch      bool `toml:"watch"`
	DebounceMS int  `toml:"debounce_ms"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int    `toml:"default_limit"`
	Layout       string `toml:"layout"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			TypedLetterMultiplier: 2,
			FullWordMultiplier:    2,
			MaxBlobSize:           dictionary.MaxBlobSize,
		},
		Query: QueryConfig{
			MaxWords:        suggest.DefaultMaxWords,
			MaxWordLength:   suggest.DefaultMaxWordLength,
			MaxAlternatives: suggest.DefaultMaxAlternatives,
		},
		Server: ServerConfig{
			Watch:      true,
			DebounceMS: 200,
		},
		CLI: CliConfig{
			DefaultLimit: 10,
			Layout:       "qwerty",
		},
	}
}

// NewQuery returns a query for taps carrying the configured defaults.
func (q QueryConfig) NewQuery(taps []keys.Tap) suggest.Query {
	query := suggest.NewQuery(taps)
	query.MaxWords = q.MaxWords
	query.MaxWordLength = q.MaxWordLength
	query.MaxAlternatives = q.MaxAlternatives
	query.MaxCorrections = q.MaxCorrections
	query.Completions = q.Completions
	return query
}

// Debounce returns the watcher debounce interval.
func (s ServerConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Validate replaces out of range values with their defaults, logging each.
func (c *Config) Validate() {
	def := DefaultConfig()
	fix := func(name string, ok bool, reset func()) {
		if !ok {
			log.Warnf("Invalid config value for %s, using default", name)
			reset()
		}
	}
	fix("engine.typed_letter_multiplier", c.Engine.TypedLetterMultiplier >= 1,
		func() { c.Engine.TypedLetterMultiplier = def.Engine.TypedLetterMultiplier })
	fix("engine.full_word_multiplier", c.Engine.FullWordMultiplier >= 1,
		func() { c.Engine.FullWordMultiplier = def.Engine.FullWordMultiplier })
	fix("engine.max_blob_size", c.Engine.MaxBlobSize > 0 && c.Engine.MaxBlobSize <= dictionary.MaxBlobSize,
		func() { c.Engine.MaxBlobSize = def.Engine.MaxBlobSize })
	fix("query.max_words", c.Query.MaxWords >= 0 && c.Query.MaxWords <= suggest.MaxWordsLimit,
		func() { c.Query.MaxWords = def.Query.MaxWords })
	fix("query.max_word_length", c.Query.MaxWordLength >= 1 && c.Query.MaxWordLength <= suggest.MaxWordLength,
		func() { c.Query.MaxWordLength = def.Query.MaxWordLength })
	fix("query.max_alternatives", c.Query.MaxAlternatives >= 0,
		func() { c.Query.MaxAlternatives = def.Query.MaxAlternatives })
	fix("server.debounce_ms", c.Server.DebounceMS >= 0,
		func() { c.Server.DebounceMS = def.Server.DebounceMS })
	fix("cli.default_limit", c.CLI.DefaultLimit > 0,
		func() { c.CLI.DefaultLimit = def.CLI.DefaultLimit })
}

// GetConfigDir returns the config directory with fallback priority:
// 1. the platform config dir (~/.config/tapdict)
// 2. current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		primaryPath := utils.ConfigDir(homeDir)
		if result := utils.CheckDirStatus(primaryPath); result.Writable {
			return primaryPath, nil
		}
	} else {
		log.Errorf("Failed to get home directory: %v", err)
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Default path: [UserConfigDir]/tapdict/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return nil, fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Sections that fail to decode fall back
// to their defaults while the rest of the file is kept.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	unknown, err := utils.LoadTOMLFile(configPath, config)
	if err != nil {
		return tryPartialParse(configPath)
	}
	for _, key := range unknown {
		log.Warnf("Unknown config key %s in %s", key, configPath)
	}
	config.Validate()
	return config, nil
}

// tryPartialParse salvages every well typed key of a config file that does
// not decode as a whole.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tree, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tree, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tree, "query"); ok {
		extractQueryConfig(section, &config.Query)
	}
	if section, ok := utils.ExtractSection(tree, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tree, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.Validate()
	return config, nil
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt(data, "typed_letter_multiplier"); ok {
		engine.TypedLetterMultiplier = val
	}
	if val, ok := utils.ExtractInt(data, "full_word_multiplier"); ok {
		engine.FullWordMultiplier = val
	}
	if val, ok := utils.ExtractInt(data, "max_blob_size"); ok {
		engine.MaxBlobSize = int64(val)
	}
}

func extractQueryConfig(data map[string]any, query *QueryConfig) {
	if val, ok := utils.ExtractInt(data, "max_words"); ok {
		query.MaxWords = val
	}
	if val, ok := utils.ExtractInt(data, "max_word_length"); ok {
		query.MaxWordLength = val
	}
	if val, ok := utils.ExtractInt(data, "max_alternatives"); ok {
		query.MaxAlternatives = val
	}
	if val, ok := utils.ExtractInt(data, "max_corrections"); ok {
		query.MaxCorrections = val
	}
	if val, ok := utils.ExtractBool(data, "completions"); ok {
		query.Completions = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		server.Watch = val
	}
	if val, ok := utils.ExtractInt(data, "debounce_ms"); ok {
		server.DebounceMS = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractString(data, "layout"); ok {
		cli.Layout = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the query defaults and saves to file
func (c *Config) Update(configPath string, maxWords, maxAlternatives, maxCorrections *int, completions *bool) error {
	query := &c.Query
	if maxWords != nil {
		query.MaxWords = *maxWords
	}
	if maxAlternatives != nil {
		query.MaxAlternatives = *maxAlternatives
	}
	if maxCorrections != nil {
		query.MaxCorrections = *maxCorrections
	}
	if completions != nil {
		query.Completions = *completions
	}
	c.Validate()
	return SaveConfig(c, configPath)
}
