package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/strongdm/commentstrip/internal/batch"
)

type batchJSONOutput struct {
	*batch.Report
	Counts batch.Counts `json:"counts"`
}

func batchCommand(args []string) {
	var opts batch.Options
	var configPath string
	var jobs int
	var jsonOutput bool

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--out":
			opts.OutDir = flagValue(args, &i)
		case "--in-place":
			opts.InPlace = true
		case "--root":
			opts.Root = flagValue(args, &i)
		case "--lang":
			opts.Lang = flagValue(args, &i)
		case "--jobs":
			raw := flagValue(args, &i)
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				fmt.Fprintf(os.Stderr, "--jobs: invalid value %q (want a positive integer)\n", raw)
				os.Exit(1)
			}
			jobs = n
		case "--config":
			configPath = flagValue(args, &i)
		case "--json":
			jsonOutput = true
		default:
			if strings.HasPrefix(args[i], "--") {
				fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
				os.Exit(1)
			}
			opts.Patterns = append(opts.Patterns, args[i])
		}
	}
	if len(opts.Patterns) == 0 || (opts.OutDir == "" && !opts.InPlace) {
		usage()
		os.Exit(1)
	}

	cfg, reg := loadRegistry(configPath)
	opts.Jobs = cfg.Jobs
	if jobs > 0 {
		opts.Jobs = jobs
	}

	ctx, stop := cancelOnSignal(context.Background(), os.Interrupt, syscall.SIGTERM)
	report, err := batch.Run(ctx, reg, opts)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batchJSONOutput{Report: report, Counts: report.Counts()}); err != nil {
			fmt.Fprintln(os.Stderr, "json encode:", err)
			os.Exit(1)
		}
	} else {
		printBatchTable(report)
	}
	os.Exit(report.ExitCode())
}

func printBatchTable(report *batch.Report) {
	fmt.Printf("run_id=%s\n", report.RunID)
	fmt.Printf("%-50s  %-10s  %8s  %8s  %s\n", "FILE", "LANG", "IN", "OUT", "STATUS")
	fmt.Println(strings.Repeat("-", 90))
	for _, f := range report.Files {
		name, err := filepath.Rel(report.Root, f.Path)
		if err != nil {
			name = f.Path
		}
		fmt.Printf("%-50s  %-10s  %8d  %8d  [%s]\n", name, f.Language, f.BytesIn, f.BytesOut, f.Status)
		if f.Error != "" {
			fmt.Printf("  %s\n", f.Error)
		}
	}
	for _, p := range report.Missing {
		fmt.Fprintf(os.Stderr, "WARNING: pattern matched no files: %s\n", p)
	}
	fmt.Println(strings.Repeat("-", 90))
	c := report.Counts()
	fmt.Printf("Total files: %d (ok=%d skipped=%d errors=%d canceled=%d)\n", len(report.Files), c.OK, c.Skipped, c.Errors, c.Canceled)
}
