package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/jsonsweep/internal/config"
	"github.com/nao1215/jsonsweep/internal/database"
	"github.com/nao1215/jsonsweep/internal/report"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command shows the runs recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `History lists the runs recorded in the history database, newest first.

With a run ID it shows the report of that run and every file write it made,
with SHA3-256 digests of the content before and after each write.

Examples:
  # List the 20 most recent runs
  jsonsweep history

  # List every run
  jsonsweep history --limit 0

  # Show one run
  jsonsweep history 12

  # Show one run as JSON
  jsonsweep history --json 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists every run)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the run report in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Validate arguments before opening the database
	var runID int64
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid run ID: %s", args[0])
		}
		runID = id
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if runID == 0 {
		return listRuns(cmd.Context(), db, limit, cmd.OutOrStdout())
	}
	return showRun(cmd.Context(), db, runID, jsonOutput, cmd.OutOrStdout())
}

// listRuns prints a table of the most recent runs.
func listRuns(ctx context.Context, db *database.HistoryDB, limit int, out io.Writer) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the history database.")
		fmt.Fprintln(out, "\nUse 'jsonsweep run' to process a directory.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-8s  %-6s  %s\n", "ID", "Date", "Scanned", "Modified", "Failed", "Root")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))

	for _, run := range runs {
		root := run.Root
		if run.DryRun {
			root += " (dry run)"
		}
		if !run.Finished() {
			root += " (unfinished)"
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-8d  %-8d  %-6d  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Scanned,
			run.Modified,
			run.Failed,
			root,
		)
	}

	fmt.Fprintln(out, "\nUse 'jsonsweep history <id>' to see the details of a run.")
	return nil
}

// showRun prints the report of one run followed by its file writes.
func showRun(ctx context.Context, db *database.HistoryDB, runID int64, jsonOutput bool, out io.Writer) error {
	runReport, err := db.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if runReport == nil {
		return fmt.Errorf("run %d not found or not finished", runID)
	}

	if jsonOutput {
		_, err := report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint()).Write(runReport)
		return err
	}

	if _, err := report.NewSimpleWriter(out, report.WithVerbose(true)).Write(runReport); err != nil {
		return err
	}

	changes, err := db.ListChanges(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list changes: %w", err)
	}
	if len(changes) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\nFile writes (%d):\n\n", len(changes))
	for _, c := range changes {
		fmt.Fprintf(out, "  %s  %-12s  %s\n", c.Timestamp.Local().Format("15:04:05"), c.Stage, c.Path)
		fmt.Fprintf(out, "      %s (%d bytes) -> %s (%d bytes)\n",
			shortHash(c.BeforeHash), c.BeforeSize, shortHash(c.AfterHash), c.AfterSize)
	}
	return nil
}

// shortHash returns the first 12 characters of a digest.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
