package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/jsonsweep/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, suitable for a CI job
// summary or a pull request comment.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeChanged(md, report)
	w.writeFailed(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("jsonsweep Report")
	md.PlainText("")

	rows := [][]string{
		{"Root", "`" + report.Root + "`"},
		{"Repository", "`" + report.Repository + "`"},
		{"Owner", "`" + report.Owner + "`"},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", report.Duration().String()},
		{"Status", w.getStatusText(report)},
	}
	if report.ID != 0 {
		rows = append(rows, []string{"History ID", strconv.FormatInt(report.ID, 10)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.RunReport) string {
	status := "✅ OK"
	if !report.OK() {
		status = "❌ " + strconv.Itoa(report.Failed()) + " file(s) failed"
	}
	if report.DryRun {
		status += " (dry run)"
	}
	return status
}

// writeSummary writes the counters table, the outcome chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Files scanned", strconv.Itoa(report.Scanned())},
			{"Files modified", strconv.Itoa(report.Modified())},
			{"Files failed", strconv.Itoa(report.Failed())},
			{"Sites removed", strconv.Itoa(report.TotalSitesRemoved())},
			{"URLs removed", strconv.Itoa(report.TotalURLsRemoved())},
			{"URLs updated", strconv.Itoa(report.TotalURLsUpdated())},
		},
	})
	md.PlainText("")

	if report.Scanned() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of the file outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("File Outcomes"),
		piechart.WithShowData(true),
	)

	title := cases.Title(language.English)
	for _, o := range []model.Outcome{model.OutcomeModified, model.OutcomeUnchanged, model.OutcomeFailed} {
		if n := countOutcome(report, o); n > 0 {
			chart.LabelAndIntValue(title.String(o.String()), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the run status.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport) {
	switch {
	case !report.OK():
		md.Cautionf(
			"%d file(s) could not be processed. Their content may be partially updated.",
			report.Failed(),
		)
	case report.DryRun && report.Modified() > 0:
		md.Importantf(
			"Dry run: %d file(s) would be modified. Nothing was written.",
			report.Modified(),
		)
	case report.Modified() > 0:
		md.Note(strconv.Itoa(report.Modified()) + " file(s) were rewritten.")
	default:
		md.Tip("Every file is already clean.")
	}
	md.PlainText("")
}

// writeChanged writes a table of the modified files with their details.
func (w *MarkdownWriter) writeChanged(md *markdown.Markdown, report *model.RunReport) {
	changed := report.ChangedFiles()

	md.H2("Modified Files")
	md.PlainText("")

	if len(changed) == 0 {
		md.PlainText("No file was modified.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(changed))
	for i, f := range changed {
		rows[i] = []string{
			"`" + f.Path + "`",
			strings.Join(f.Stages, ", "),
			strconv.Itoa(f.SitesRemoved),
			strconv.Itoa(f.URLsRemoved),
			strconv.Itoa(f.URLsUpdated()),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"File", "Stages", "Sites Removed", "URLs Removed", "URLs Updated"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range changed {
		if details := changeDetails(f); details != "" {
			md.Details(f.Base, details)
		}
	}
	md.PlainText("")
}

// changeDetails lists the removed names and rewritten urls of f.
func changeDetails(f *model.FileReport) string {
	lines := make([]string, 0, len(f.RemovedNames)+len(f.Changes))
	for _, name := range f.RemovedNames {
		lines = append(lines, "- removed: "+truncateString(name, 80))
	}
	for _, c := range f.Changes {
		lines = append(lines, "- `"+c.Before+"` -> `"+c.After+"`")
	}
	return strings.Join(lines, "\n")
}

// writeFailed writes the failed files as a bullet list.
func (w *MarkdownWriter) writeFailed(md *markdown.Markdown, report *model.RunReport) {
	failed := report.FailedFiles()
	if len(failed) == 0 {
		return
	}

	md.H2("Failed Files")
	md.PlainText("")

	items := make([]string, len(failed))
	for i, f := range failed {
		item := "`" + f.Path + "`"
		if f.FailedStage != "" {
			item += " [" + f.FailedStage + "]"
		}
		items[i] = item + ": " + truncateString(f.Error, 120)
	}

	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [jsonsweep](https://github.com/nao1215/jsonsweep)*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
