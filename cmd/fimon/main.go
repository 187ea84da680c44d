// Command fimon monitors a configured set of files for content changes by
// comparing their digests against a recorded baseline.
//
// Usage:
//
//	fimon [flags] <config_file> <command>
//
// Commands:
//
//	init    create an empty baseline database, destroying any existing one
//	show    list every recorded path and digest
//	diff    compare current file contents against the baseline
//	update  recompute the diff and record modified and added files
//
// Flags: --json (machine output for show/diff), --ci (GitHub Actions
// annotations for diff), --quiet (suppress normal output, exit codes only).
//
// Exit codes: 0 on success (for diff: no differences found), 1 on any
// fatal error, 2 when diff detects differences. Records for files that
// have disappeared are retained in the baseline; update never deletes
// them. Two concurrent updates against the same baseline resolve
// last-writer-wins.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"fimon/internal/baseline"
	"fimon/internal/cli"
	"fimon/internal/config"
	"fimon/internal/reconcile"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitDrift = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes exactly one command end-to-end and returns the exit code.
// Separated from main so tests drive it directly.
func run(args []string, stdout, stderr io.Writer) int {
	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFatal
	}

	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFatal
	}

	store, err := baseline.Open(cfg.Database)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFatal
	}
	defer store.Close()

	switch cmd.Action {
	case cli.ActionInit:
		return runInit(cmd, store, stdout, stderr)
	case cli.ActionShow:
		return runShow(cmd, store, stdout, stderr)
	case cli.ActionDiff:
		return runDiff(cmd, cfg, store, stdout, stderr)
	case cli.ActionUpdate:
		return runUpdate(cmd, cfg, store, stdout, stderr)
	}

	return exitFatal
}

func runInit(cmd cli.Command, store *baseline.Store, stdout, stderr io.Writer) int {
	if err := store.Initialize(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFatal
	}
	if !cmd.Quiet {
		fmt.Fprintln(stdout, "Baseline initialized.")
	}
	return exitOK
}

func runShow(cmd cli.Command, store *baseline.Store, stdout, stderr io.Writer) int {
	records, err := store.LoadAll()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFatal
	}

	if cmd.JSONOutput {
		if records == nil {
			records = []baseline.Record{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return exitFatal
		}
		fmt.Fprintln(stdout, string(data))
		return exitOK
	}

	if !cmd.Quiet {
		for _, r := range records {
			fmt.Fprintf(stdout, "%s  %s  %s\n", r.Digest, r.RecordedAt.Format(time.RFC3339), r.Path)
		}
		fmt.Fprintf(stdout, "\nNumber of files monitored: %d\n", len(records))
	}
	return exitOK
}

func runDiff(cmd cli.Command, cfg *config.Config, store *baseline.Store, stdout, stderr io.Writer) int {
	result, code := computeDiff(cfg, store, stderr)
	if code != exitOK {
		return code
	}

	switch {
	case cmd.JSONOutput:
		out, err := reconcile.FormatJSON(result)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return exitFatal
		}
		fmt.Fprintln(stdout, out)
	case cmd.CIMode:
		fmt.Fprint(stdout, reconcile.FormatCI(result))
	case !cmd.Quiet:
		fmt.Fprint(stdout, reconcile.FormatCLI(result))
	}

	if result.HasChanges() {
		return exitDrift
	}
	return exitOK
}

func runUpdate(cmd cli.Command, cfg *config.Config, store *baseline.Store, stdout, stderr io.Writer) int {
	// update never trusts a previous invocation: it recomputes the diff
	// and commits it in the same run, in one transaction.
	result, code := computeDiff(cfg, store, stderr)
	if code != exitOK {
		return code
	}

	accepted := result.Accepted()
	if err := store.Commit(accepted, time.Now().UTC()); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFatal
	}

	if !cmd.Quiet {
		counts := result.Counts()
		fmt.Fprintf(stdout, "Baseline updated: %d recorded (%d modified, %d added), %d missing retained.\n",
			len(accepted),
			counts[reconcile.StatusModified],
			counts[reconcile.StatusAdded],
			counts[reconcile.StatusMissing])
	}
	return exitOK
}

// computeDiff loads the tracked-path list and the baseline snapshot and
// reconciles them. Shared by diff and update.
func computeDiff(cfg *config.Config, store *baseline.Store, stderr io.Writer) (reconcile.Result, int) {
	tracked, err := cfg.TrackedPaths()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return reconcile.Result{}, exitFatal
	}

	records, err := store.LoadAll()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return reconcile.Result{}, exitFatal
	}

	engine := reconcile.Engine{Algo: cfg.Algo(), Workers: cfg.Workers}
	return engine.Reconcile(tracked, records), exitOK
}
