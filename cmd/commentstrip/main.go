package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/strongdm/commentstrip/internal/config"
	"github.com/strongdm/commentstrip/internal/dotenv"
	"github.com/strongdm/commentstrip/internal/lang"
	"github.com/strongdm/commentstrip/internal/version"
)

// cancelOnSignal returns a child of parent that is canceled by the first of
// sigs to arrive, with a cause naming the signal. stop releases the handler.
func cancelOnSignal(parent context.Context, sigs ...os.Signal) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancelCause(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			cancel(fmt.Errorf("stopped by signal %s", sig))
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(nil) }
}

func main() {
	if err := dotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %v\n", err)
	}
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("commentstrip %s\n", version.Version)
		os.Exit(0)
	case "strip":
		stripCommand(os.Args[2:])
	case "batch":
		batchCommand(os.Args[2:])
	case "langs":
		langsCommand(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  commentstrip --version")
	fmt.Fprintln(os.Stderr, "  commentstrip strip [--lang <name>] [--config <file>] [<file> ...]")
	fmt.Fprintln(os.Stderr, "  commentstrip batch (--out <dir> | --in-place) [--root <dir>] [--lang <name>] [--jobs <n>] [--config <file>] [--json] <pattern> [<pattern> ...]")
	fmt.Fprintln(os.Stderr, "  commentstrip langs [--config <file>] [--json]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "environment: %s (config file), %s (worker count); .env in the working directory is loaded first\n", config.EnvConfigPath, config.EnvJobs)
}

// flagValue returns the argument after a value-taking flag, exiting with a
// usage error when it is missing.
func flagValue(args []string, i *int) string {
	name := args[*i]
	*i++
	if *i >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a value\n", name)
		os.Exit(1)
	}
	return args[*i]
}

func loadRegistry(configPath string) (*config.File, *lang.Registry) {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	reg, err := cfg.Registry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg, reg
}
