package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/jsonsweep/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Output is plain ASCII framing so it can be piped to files unchanged.
type SimpleWriter struct {
	baseWriter

	// showUnchanged lists the files that were left as they were.
	showUnchanged bool

	// verbose lists removed names and rewritten urls per file.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowUnchanged configures the writer to list unchanged files.
func WithShowUnchanged(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showUnchanged = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeChanged(&sb, report)
	w.writeFailed(&sb, report)
	w.writeUnchanged(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeSection writes a section title between two rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          JSONSWEEP REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Root:        %s\n", report.Root))
	sb.WriteString(fmt.Sprintf("Repository:  %s\n", report.Repository))
	sb.WriteString(fmt.Sprintf("Owner:       %s\n", report.Owner))
	sb.WriteString(fmt.Sprintf("Started:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", report.Duration()))

	switch {
	case report.DryRun:
		sb.WriteString("Mode:        DRY RUN (no file written)\n")
	case report.ID != 0:
		sb.WriteString(fmt.Sprintf("History ID:  %d\n", report.ID))
	}

	if report.OK() {
		sb.WriteString("Status:      OK\n")
	} else {
		sb.WriteString(fmt.Sprintf("Status:      %d FILE(S) FAILED\n", report.Failed()))
	}

	sb.WriteString("\n")
}

// writeSummary writes the counters section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	writeSection(sb, "SUMMARY")

	sb.WriteString(fmt.Sprintf("  FILES SCANNED:   %d\n", report.Scanned()))
	sb.WriteString(fmt.Sprintf("  FILES MODIFIED:  %d\n", report.Modified()))
	sb.WriteString(fmt.Sprintf("  FILES FAILED:    %d\n", report.Failed()))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  SITES REMOVED:   %d\n", report.TotalSitesRemoved()))
	sb.WriteString(fmt.Sprintf("  URLS REMOVED:    %d\n", report.TotalURLsRemoved()))
	sb.WriteString(fmt.Sprintf("  URLS UPDATED:    %d\n", report.TotalURLsUpdated()))
	sb.WriteString("\n")
}

// writeChanged writes the files written by at least one stage.
func (w *SimpleWriter) writeChanged(sb *strings.Builder, report *model.RunReport) {
	changed := report.ChangedFiles()
	if len(changed) == 0 {
		return
	}

	writeSection(sb, "MODIFIED FILES")

	for _, f := range changed {
		sb.WriteString(fmt.Sprintf("  [+] %s (%s)\n", f.Path, strings.Join(f.Stages, ", ")))
		if f.SitesRemoved > 0 {
			sb.WriteString(fmt.Sprintf("      sites removed: %d\n", f.SitesRemoved))
		}
		if f.URLsRemoved > 0 {
			sb.WriteString(fmt.Sprintf("      urls removed:  %d\n", f.URLsRemoved))
		}
		if f.URLsUpdated() > 0 {
			sb.WriteString(fmt.Sprintf("      urls updated:  %d\n", f.URLsUpdated()))
		}
		if !w.verbose {
			continue
		}
		for _, name := range f.RemovedNames {
			sb.WriteString(fmt.Sprintf("      - %s\n", name))
		}
		for _, c := range f.Changes {
			sb.WriteString(fmt.Sprintf("      %s -> %s\n", c.Before, c.After))
		}
	}
	sb.WriteString("\n")
}

// writeFailed writes the failed files with their error.
func (w *SimpleWriter) writeFailed(sb *strings.Builder, report *model.RunReport) {
	failed := report.FailedFiles()
	if len(failed) == 0 {
		return
	}

	writeSection(sb, "FAILED FILES")

	for _, f := range failed {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", f.Path))
		if f.FailedStage != "" {
			sb.WriteString(fmt.Sprintf("      stage: %s\n", f.FailedStage))
		}
		sb.WriteString(fmt.Sprintf("      error: %s\n", f.Error))
	}
	sb.WriteString("\n")
}

// writeUnchanged writes the files left as they were.
func (w *SimpleWriter) writeUnchanged(sb *strings.Builder, report *model.RunReport) {
	if !w.showUnchanged || countOutcome(report, model.OutcomeUnchanged) == 0 {
		return
	}

	writeSection(sb, "UNCHANGED FILES")

	for _, f := range report.Files {
		if f.Outcome == model.OutcomeUnchanged {
			sb.WriteString(fmt.Sprintf("  [ ] %s\n", f.Path))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by jsonsweep\n")
	sb.WriteString("https://github.com/nao1215/jsonsweep\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
