// Copyright 2026 The LaunchRank Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the quick-launch page ranking server and CLI [DBG]
application.

LaunchRank ranks a user's previously visited pages against partial queries,
blending prefix/fuzzy string matching with temporal visit statistics and a
reinforcement-learned personalization signal. It can operate as a MessagePack
IPC server for integration with a launcher UI, or as a CLI application for
testing and debugging.

# Usage

Start the server with a snapshot of pages and visits:

	launchrank -snapshot pages.bin

Enable debug mode:

	launchrank -snapshot pages.bin -d

Run in CLI mode for interactive testing:

	launchrank -snapshot pages.bin -c -limit 10

# Configuration

Runtime configuration is managed through a TOML file:

	[server]
	max_results = 5
	max_query_len = 60

	[ranking]
	beta = 1.0
	k = 0.5
	mu = 30.0
	rl_learning_rate = 0.1
	session_timeout = 1800

	[bloom]
	enabled = false
	capacity = 10000
	fp_rate = 0.01

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Ranking requests
are processed synchronously with microsecond timing information included in
responses:

	{"id": "req1", "cmd": "rank", "q": "git", "l": 5}
	{"id": "req1", "s": [{"p": "p1", "r": 1}], "c": 1, "t": 145}

Visit, click, impression and page-update events mutate engine state:

	{"id": "v1", "cmd": "visit", "page": "p1", "t": 1712345678, "dwell": 30}
	{"id": "c1", "cmd": "click", "page": "p1"}

# Snapshot

The snapshot file is a single msgpack document holding the page registry and
visit store. Persistence is owned here in the command layer; the engine only
ever sees in-memory stores. With -save the snapshot is written back on exit.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/launchrank/internal/cli"
	"github.com/bastiangx/launchrank/pkg/config"
	"github.com/bastiangx/launchrank/pkg/rank"
	"github.com/bastiangx/launchrank/pkg/server"
	"github.com/bastiangx/launchrank/pkg/store"
)

const (
	Version = "0.3.0"
	AppName = "launchrank"
	gh      = "https://github.com/bastiangx/launchrank"
)

// sigHandler exits normally on OS signals, optionally writing the snapshot
// back first.
func sigHandler(save func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		if save != nil {
			save()
		}
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	snapshotPath := flag.String("snapshot", "", "Path to a msgpack snapshot of pages and visits")
	configPath := flag.String("config", "", "Path to a TOML config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of results to return in CLI mode")
	userID := flag.String("user", "default", "Opaque user ID for this engine instance")
	saveOnExit := flag.Bool("save", false, "Write the snapshot back on exit")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ LaunchRank ] Ranks your pages before you finish typing!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	var pages *store.MemoryRegistry
	var visits *store.MemoryVisits
	if *snapshotPath != "" {
		snap, err := store.LoadSnapshot(*snapshotPath)
		if err != nil {
			log.Fatalf("Failed to load snapshot: %v", err)
		}
		pages, visits = snap.Stores()
	} else {
		log.Warn("No snapshot specified, starting with an empty page registry...")
		pages = store.NewMemoryRegistry(nil)
		visits = store.NewMemoryVisits(nil)
	}

	engine := rank.New(pages, visits, *userID, appConfig.RankOptions())

	var save func()
	if *saveOnExit && *snapshotPath != "" {
		save = func() {
			snap := snapshotFromStores(*userID, pages, visits)
			if err := store.SaveSnapshot(snap, *snapshotPath); err != nil {
				log.Errorf("Failed to save snapshot: %v", err)
			}
		}
	}
	sigHandler(save)

	if *cliMode {
		log.SetReportTimestamp(false)
		cliLimit := *limit
		if cliLimit <= 0 {
			cliLimit = appConfig.CLI.DefaultLimit
		}
		inputHandler := cli.NewInputHandler(engine, pages, cliLimit, appConfig.Server.MaxQueryLen)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, appConfig)

	showStartupInfo(*snapshotPath, engine)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	if save != nil {
		save()
	}
}

// snapshotFromStores packs the live stores back into a snapshot document.
func snapshotFromStores(userID string, pages *store.MemoryRegistry, visits *store.MemoryVisits) *store.Snapshot {
	snap := &store.Snapshot{
		UserID: userID,
		Pages:  make(map[string]store.PageMeta, pages.Len()),
		Visits: make(map[string]*store.VisitEntry, visits.Len()),
	}
	for _, id := range pages.IDs() {
		if meta, ok := pages.Get(id); ok {
			snap.Pages[id] = meta
		}
	}
	for _, id := range visits.IDs() {
		if entry, ok := visits.Get(id); ok {
			snap.Visits[id] = entry
		}
	}
	return snap
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(snapshotPath string, engine rank.Ranker) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	stats := engine.Stats()

	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, " LaunchRank ")
	fmt.Fprintln(os.Stderr, "============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("snapshot: ( %s )", snapshotPath)
	log.Infof("pages: %d, visited: %d", stats["pages"], stats["rankablePages"])
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
