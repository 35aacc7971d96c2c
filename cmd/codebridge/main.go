// Package main provides the codebridge MCP server: a bridge that runs the
// codetraverse analysis engine as subprocesses and exposes its operations as
// MCP tools over stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codebridge/internal/bridge"
	"codebridge/internal/server"
	"codebridge/util"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	pythonFlag := flag.String("python", envOr("CODEBRIDGE_PYTHON", "python3"),
		"python interpreter used to run the engine (env: CODEBRIDGE_PYTHON)")
	engineDirFlag := flag.String("engine-dir", os.Getenv("CODEBRIDGE_ENGINE_DIR"),
		"path to the codetraverse engine checkout (env: CODEBRIDGE_ENGINE_DIR)")
	timeoutFlag := flag.Duration("timeout", bridge.DefaultTimeout,
		"per-invocation timeout for engine calls")
	rootFlag := flag.String("root", "",
		"default workspace root for analysis tools (default: enclosing git root)")
	setupFlag := flag.Bool("setup", false,
		"install the engine into the python environment and exit")
	flag.Parse()

	if *engineDirFlag == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -engine-dir (or CODEBRIDGE_ENGINE_DIR) is required")
		flag.Usage()
		os.Exit(2)
	}

	root := *rootFlag
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatalf("[main] cannot determine working directory: %v", err)
		}
		root, err = util.FindGitRoot(cwd)
		if err != nil {
			log.Fatalf("[main] cannot determine workspace root: %v", err)
		}
	}

	b := bridge.New(bridge.Config{
		Python:    *pythonFlag,
		EngineDir: *engineDirFlag,
		Timeout:   *timeoutFlag,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *setupFlag {
		start := time.Now()
		if err := b.SetupEnvironment(ctx); err != nil {
			log.Fatalf("[main] setup failed: %v", err)
		}
		log.Printf("[main] setup complete in %.1fs", time.Since(start).Seconds())
		return
	}

	if err := b.ValidateSetup(ctx); err != nil {
		log.Fatalf("[main] %v", err)
	}

	log.Printf("[main] serving MCP over stdio (engine: %s, root: %s)", *engineDirFlag, root)
	if err := server.New(b, root).Run(ctx); err != nil {
		log.Fatalf("[main] server exited: %v", err)
	}
}
