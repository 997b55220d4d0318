package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/jsonsweep/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in JSON format.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	return w.writeJSON(report)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// Summary holds the run counters.
type Summary struct {
	Scanned      int  `json:"scanned"`
	Modified     int  `json:"modified"`
	Unchanged    int  `json:"unchanged"`
	Failed       int  `json:"failed"`
	SitesRemoved int  `json:"sites_removed"`
	URLsRemoved  int  `json:"urls_removed"`
	URLsUpdated  int  `json:"urls_updated"`
	OK           bool `json:"ok"`
}

// NewSummary computes the counters of report.
func NewSummary(report *model.RunReport) *Summary {
	return &Summary{
		Scanned:      report.Scanned(),
		Modified:     report.Modified(),
		Unchanged:    countOutcome(report, model.OutcomeUnchanged),
		Failed:       report.Failed(),
		SitesRemoved: report.TotalSitesRemoved(),
		URLsRemoved:  report.TotalURLsRemoved(),
		URLsUpdated:  report.TotalURLsUpdated(),
		OK:           report.OK(),
	}
}

// JSONReport wraps the run report with the tool version and a summary,
// so consumers do not have to recompute the counters.
type JSONReport struct {
	// Version is the jsonsweep version that produced this report.
	Version string `json:"version"`

	// Summary holds the run counters.
	Summary *Summary `json:"summary"`

	// Report is the full run report.
	Report *model.RunReport `json:"report"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.RunReport, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Summary: NewSummary(report),
		Report:  report,
	}
}

// FullJSONWriter outputs complete reports with metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the jsonsweep version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the run report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.RunReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
