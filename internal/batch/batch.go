// Package batch strips comments from many files at once.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/strongdm/commentstrip/internal/lang"
)

type Status string

const (
	StatusOK       Status = "ok"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
	StatusCanceled Status = "canceled"
)

type Options struct {
	// Root anchors relative patterns and the layout under OutDir. Defaults
	// to the working directory.
	Root     string
	Patterns []string
	// Exactly one of OutDir and InPlace must be set.
	OutDir  string
	InPlace bool
	// Lang forces one language for every file instead of picking by path.
	Lang  string
	Jobs  int
	RunID string
}

type FileResult struct {
	Path     string `json:"path"`
	Output   string `json:"output,omitempty"`
	Language string `json:"language,omitempty"`
	BytesIn  int    `json:"bytes_in"`
	BytesOut int    `json:"bytes_out"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
}

type Report struct {
	RunID      string       `json:"run_id"`
	Root       string       `json:"root"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Files      []FileResult `json:"files"`
	Missing    []string     `json:"missing,omitempty"`
}

type Counts struct {
	OK       int `json:"ok"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
	Canceled int `json:"canceled"`
}

func (r *Report) Counts() Counts {
	var c Counts
	if r == nil {
		return c
	}
	for _, f := range r.Files {
		switch f.Status {
		case StatusOK:
			c.OK++
		case StatusSkipped:
			c.Skipped++
		case StatusError:
			c.Errors++
		case StatusCanceled:
			c.Canceled++
		}
	}
	return c
}

// ExitCode is 1 when any file failed or was canceled or a pattern matched
// nothing, 2 when files were only skipped, 0 otherwise.
func (r *Report) ExitCode() int {
	c := r.Counts()
	switch {
	case c.Errors > 0 || c.Canceled > 0 || (r != nil && len(r.Missing) > 0):
		return 1
	case c.Skipped > 0:
		return 2
	default:
		return 0
	}
}

func (opts Options) validate() error {
	if len(opts.Patterns) == 0 {
		return fmt.Errorf("at least one file pattern is required")
	}
	outDir := strings.TrimSpace(opts.OutDir)
	if outDir == "" && !opts.InPlace {
		return fmt.Errorf("either an output directory or in-place mode is required")
	}
	if outDir != "" && opts.InPlace {
		return fmt.Errorf("output directory and in-place mode are mutually exclusive")
	}
	return nil
}

// Run expands opts.Patterns and strips every matched file with opts.Jobs
// workers. Per-file problems are recorded in the report; the error return is
// for invalid options and pattern syntax. Files not started before ctx is
// done are reported as canceled.
func Run(ctx context.Context, reg *lang.Registry, opts Options) (*Report, error) {
	if reg == nil {
		return nil, fmt.Errorf("batch: language registry is nil")
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if opts.OutDir != "" {
		if opts.OutDir, err = filepath.Abs(opts.OutDir); err != nil {
			return nil, err
		}
	}
	if opts.Lang != "" {
		if _, err := reg.Lookup(opts.Lang); err != nil {
			return nil, fmt.Errorf("batch: %w", err)
		}
	}
	runID := opts.RunID
	if runID == "" {
		if runID, err = NewRunID(); err != nil {
			return nil, err
		}
	}

	report := &Report{RunID: runID, Root: root, StartedAt: time.Now().UTC()}
	files, missing, err := ExpandPatterns(root, opts.Patterns)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	report.Missing = missing
	report.Files = make([]FileResult, len(files))

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(files) {
		jobs = len(files)
	}

	work := make(chan int)
	var wg sync.WaitGroup
	wg.Add(jobs)
	for w := 0; w < jobs; w++ {
		go func() {
			defer wg.Done()
			for i := range work {
				report.Files[i] = processFile(ctx, reg, root, files[i], opts)
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			for j := i; j < len(files); j++ {
				report.Files[j] = canceled(ctx, files[j])
			}
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

func canceled(ctx context.Context, path string) FileResult {
	msg := "canceled"
	if cause := context.Cause(ctx); cause != nil {
		msg = cause.Error()
	}
	return FileResult{Path: path, Status: StatusCanceled, Error: msg}
}

func processFile(ctx context.Context, reg *lang.Registry, root, path string, opts Options) FileResult {
	if ctx.Err() != nil {
		return canceled(ctx, path)
	}
	res := FileResult{Path: path}
	fail := func(err error) FileResult {
		res.Status = StatusError
		res.Error = err.Error()
		return res
	}

	var (
		l   lang.Language
		err error
	)
	if opts.Lang != "" {
		l, err = reg.Lookup(opts.Lang)
	} else {
		l, err = reg.ForPath(path)
	}
	if err != nil {
		if errors.Is(err, lang.ErrUnknownLanguage) {
			res.Status = StatusSkipped
			res.Error = err.Error()
			return res
		}
		return fail(err)
	}
	res.Language = l.Name
	scanner, err := reg.Scanner(l.Name)
	if err != nil {
		return fail(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	out := scanner.Strip(string(src))
	res.BytesIn = len(src)
	res.BytesOut = len(out)

	if opts.InPlace {
		res.Output = path
		if out != string(src) {
			if err := writeFileAtomic(path, []byte(out), info.Mode().Perm()); err != nil {
				return fail(err)
			}
		}
	} else {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fail(fmt.Errorf("%s is outside root %s", path, root))
		}
		dst := filepath.Join(opts.OutDir, rel)
		res.Output = dst
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fail(err)
		}
		if err := os.WriteFile(dst, []byte(out), info.Mode().Perm()); err != nil {
			return fail(err)
		}
	}
	res.Status = StatusOK
	return res
}

// writeFileAtomic replaces path through a temp file in the same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
