// Copyright 2025 The tapdict Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the tapdict suggestion server and its CLI [DBG] mode.

tapserve loads a compiled dictionary and answers, for a noisy sequence of key
taps, the words the user most likely meant. It runs as a MessagePack IPC
server for keyboards and editors, or as an interactive CLI for testing
layouts and scoring.

# Usage

Start the server on the default dictionary (words.dict next to the binary, in
its data/ directory or in the config directory):

	tapserve

Use another dictionary and enable debug logs:

	tapserve -dict /path/to/fr.dict -d

Run the CLI:

	tapserve -c

Dictionaries are compiled from wordlists with tapc.

# Configuration

The TOML config is created with defaults on first run:

	[engine]
	typed_letter_multiplier = 2
	full_word_multiplier = 2
	max_blob_size = 4194304

	[query]
	max_words = 18
	max_word_length = 32
	max_alternatives = 8
	max_corrections = 0
	completions = false

	[server]
	watch = true
	debounce_ms = 200

	[cli]
	default_limit = 10
	layout = "qwerty"

With watch enabled, dictionary files are reloaded when they change.

# Command Line Flags

	-dict string
	    Dictionary file (default "words.dict")
	-config string
	    Config file (default [UserConfigDir]/tapdict/config.toml)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-version
	    Show version information
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/tapdict/internal/cli"
	"github.com/bastiangx/tapdict/internal/logger"
	"github.com/bastiangx/tapdict/internal/utils"
	"github.com/bastiangx/tapdict/internal/watch"
	"github.com/bastiangx/tapdict/pkg/config"
	"github.com/bastiangx/tapdict/pkg/engine"
	"github.com/bastiangx/tapdict/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	gh      = "https://github.com/bastiangx/tapdict"
)

// sigHandler exits normally on interrupt.
func sigHandler(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cleanup()
		os.Exit(0)
	}()
}

func showVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ tapdict ] Suggests what you meant to type")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// main wires the packages together and only manages the flow.
func main() {
	version := flag.Bool("version", false, "Show current version")
	dictPath := flag.String("dict", utils.DefaultDictionary, "Dictionary file")
	configPath := flag.String("config", "", "Config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	flag.Parse()

	if *version {
		showVersion()
		return
	}
	logger.Setup(*debugMode)

	cfg, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfig))

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	resolvedDict, err := pathResolver.FindDictionary(*dictPath)
	if err != nil {
		log.Fatal("Failed to find dictionary. Did you compile one with tapc?", "err", err)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		ec := cfg.Engine
		e, err := engine.OpenFile(resolvedDict, 0, 0, ec.TypedLetterMultiplier, ec.FullWordMultiplier, ec.MaxBlobSize)
		if err != nil {
			log.Fatalf("Failed to open dictionary: %v", err)
		}
		sigHandler(func() { e.Close() })
		if err := cli.NewInputHandler(e, cfg).Start(os.Stdin); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	registry := engine.NewRegistry()
	srv := server.NewServer(registry, cfg, os.Stdin, os.Stdout)

	var watcher *watch.Watcher
	if cfg.Server.Watch {
		watcher, err = watch.New(cfg.Server.Debounce(), srv.Reload)
		if err != nil {
			log.Warnf("Dictionary reloading disabled: %v", err)
		} else {
			srv.SetWatcher(watcher)
		}
	}
	cleanup := func() {
		if watcher != nil {
			watcher.Close()
		}
		registry.CloseAll()
	}
	sigHandler(cleanup)
	defer cleanup()

	if _, err := srv.OpenDictionary(resolvedDict); err != nil {
		log.Fatalf("Failed to open dictionary: %v", err)
	}
	showStartupInfo(resolvedDict)

	if err := srv.Start(); err != nil {
		log.Errorf("Server stopped: %v", err)
		cleanup()
		os.Exit(1)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dict string) {
	l := logger.NewWithConfig(os.Stderr, "tapserve", log.InfoLevel, false, false, log.TextFormatter)
	l.Infof("Version: %s", Version)
	l.Infof("Process ID: [ %d ]", os.Getpid())
	l.Infof("dictionary: ( %s )", dict)
	l.Info("status: ready")
}
